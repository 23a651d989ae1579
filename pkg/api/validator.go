package api

import (
	"fmt"
	"strings"
)

// Validator - контракт самопроверки входящих данных.
// Транспорт вызывает Validate ДО передачи сообщения движку:
// мусор (пустой текст, пустой отправитель) не должен доходить до ядра.
type Validator interface {
	Validate() error
}

const maxTextLen = 1000

func (m InboundMessage) Validate() error {
	if strings.TrimSpace(m.SenderID) == "" {
		return fmt.Errorf("empty sender id")
	}
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("empty text")
	}
	if len(m.Text) > maxTextLen {
		return fmt.Errorf("text too long: %d > %d", len(m.Text), maxTextLen)
	}
	return nil
}
