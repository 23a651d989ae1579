package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"livium-server/internal/domain"
)

// TemplateNarrator - деградированный нарратор. Никогда не ошибается:
// он последний рубеж перед игроком.
type TemplateNarrator struct {
	rng domain.Rand
}

func NewTemplateNarrator(rng domain.Rand) *TemplateNarrator {
	return &TemplateNarrator{rng: rng}
}

// Реплики по тегам событий. Нейтральные варианты - когда тегов нет.
var eventLines = map[string][]string{
	domain.EventTheftSuccess: {
		"Your fingers close around the prize. Nobody saw a thing. Your heart is still pounding as you slip away.",
		"A few tense seconds and it is done. You melt back into the crowd, pockets heavier.",
	},
	domain.EventTheftFailed: {
		"A shout rings out behind you. Hands grab your jacket. You break free, bruised, and the whole street has seen your face.",
		"It goes wrong fast. You take a beating before you manage to run, and word of the attempt spreads.",
	},
	domain.EventCombatWon: {
		"The exchange is short and brutal. Your opponent backs off, and you walk away with a few new bruises.",
		"You land the decisive blow. It cost you, but you are the one still standing.",
	},
	domain.EventCombatLost: {
		"You end up on the ground, ears ringing. By the time you get up, your opponent is gone and people are staring.",
		"The fight does not go your way. You limp off, and someone has certainly called the police.",
	},
	domain.EventSocial: {
		"The conversation flows easily. You leave with a little more warmth in your chest.",
		"A few words exchanged, a nod, a half-smile. The city feels slightly less anonymous.",
	},
	domain.EventTransaction: {
		"Money changes hands. Business is business.",
		"The deal is done with a handshake and a quick count of the cash.",
	},
	domain.EventPoliceStop: {
		"A patrol car slows beside you. Questions, a pat-down, a rough shove. They let you go, for now.",
	},
	domain.EventNightDanger: {
		"Shadows move in the side streets. This is not a place to linger after dark.",
	},
}

var neutralLines = []string{
	"You move through %s. The city hums around you, indifferent.",
	"Time passes in %s. Nothing remarkable happens, which around here counts as luck.",
	"The streets of %s carry you along. You keep your eyes open.",
}

func (t *TemplateNarrator) Narrate(_ context.Context, nc NarrativeContext) (string, error) {
	var parts []string
	for _, tag := range nc.Outcome.Events {
		if lines, ok := eventLines[tag]; ok {
			parts = append(parts, lines[t.rng.Intn(len(lines))])
		}
	}
	if len(parts) == 0 {
		where := nc.Location
		if where == "" {
			where = "the city"
		}
		parts = append(parts, fmt.Sprintf(neutralLines[t.rng.Intn(len(neutralLines))], where))
	}
	if nc.Outcome.CashDelta > 0 {
		parts = append(parts, fmt.Sprintf("You are %d$ richer.", nc.Outcome.CashDelta))
	}
	return strings.Join(parts, " "), nil
}

// PollinationsIllustrator строит URL генератора изображений; сетевых
// вызовов не делает - грузить картинку будет клиент.
type PollinationsIllustrator struct{}

func NewPollinationsIllustrator() *PollinationsIllustrator {
	return &PollinationsIllustrator{}
}

func (PollinationsIllustrator) Illustrate(nc NarrativeContext) string {
	if nc.ActionText == "" {
		return ""
	}
	prompt := fmt.Sprintf("cinematic street scene, %s, %s, realistic, moody lighting",
		nc.Location, nc.ActionText)
	return "https://image.pollinations.ai/prompt/" + url.PathEscape(prompt)
}
