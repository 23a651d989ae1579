package api

import (
	"strings"
	"testing"
)

func TestInboundMessageValidate(t *testing.T) {
	tests := []struct {
		name      string
		msg       InboundMessage
		wantError bool
	}{
		{
			name: "valid command",
			msg:  InboundMessage{SenderID: "player_1", Text: "/stats"},
		},
		{
			name: "valid free action",
			msg:  InboundMessage{SenderID: "player_1", Text: "walk to the market", IsGroup: true},
		},
		{
			name:      "empty sender",
			msg:       InboundMessage{SenderID: "", Text: "/stats"},
			wantError: true,
		},
		{
			name:      "whitespace sender",
			msg:       InboundMessage{SenderID: "   ", Text: "/stats"},
			wantError: true,
		},
		{
			name:      "empty text",
			msg:       InboundMessage{SenderID: "player_1", Text: ""},
			wantError: true,
		},
		{
			name:      "whitespace text",
			msg:       InboundMessage{SenderID: "player_1", Text: "  \n "},
			wantError: true,
		},
		{
			name:      "text over limit",
			msg:       InboundMessage{SenderID: "player_1", Text: strings.Repeat("a", maxTextLen+1)},
			wantError: true,
		},
		{
			name: "text at limit",
			msg:  InboundMessage{SenderID: "player_1", Text: strings.Repeat("a", maxTextLen)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
