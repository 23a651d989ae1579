package engine

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"livium-server/internal/ai"
	"livium-server/internal/domain"
	"livium-server/pkg/logger"
)

var fallHeightRe = regexp.MustCompile(`(\d+)\s*m`)

// validateImpossible отсекает физически невозможные действия до
// классификации: полеты, прыжки на 10 метров, падения выше 15 метров.
func validateImpossible(text string) error {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "jump") && (strings.Contains(lower, "10m") || strings.Contains(lower, "10 m")) {
		return domain.NewValidationError("A human cannot jump 10 meters high.")
	}
	if strings.Contains(lower, "fly") && !strings.Contains(lower, "flight") {
		return domain.NewValidationError("Humans cannot fly.")
	}
	if strings.Contains(lower, "fall") && strings.Contains(lower, "survive") {
		if m := fallHeightRe.FindStringSubmatch(lower); m != nil {
			if h, err := strconv.Atoi(m[1]); err == nil && h > 15 {
				return domain.NewValidationError("A fall from more than 15 meters is lethal.")
			}
		}
	}
	return nil
}

// handleFreeAction прогоняет свободный текст через весь конвейер:
// валидация -> классификация -> последствия -> применение -> персист ->
// реакции NPC -> семейный тик -> нарратив.
func (s *GameService) handleFreeAction(ctx context.Context, p *domain.Player, text string) (body, imageURL string, err error) {
	if err := validateImpossible(text); err != nil {
		return "", "", err
	}

	loc := s.location(p)
	action, err := s.classifier.Classify(ctx, text, loc)
	if err != nil {
		return "", "", err
	}

	// Перемещение в район своего города идет через карту районов,
	// а не через общий расчет последствий.
	if action.Category == domain.ActionMovement {
		if district := s.matchDistrict(p, text); district != "" {
			body, err := s.cmdGo(ctx, p, []string{district})
			return body, "", err
		}
	}

	ts := s.timeSnapshot()
	outcome := s.consequences.Calculate(action, p, loc, ts.CurrentHour)

	p.ApplyStats(outcome.Stats)
	s.applyCash(p, outcome.CashDelta)
	if outcome.PositionChange != "" && outcome.PositionChange != p.Position.Location {
		p.Position.Location = outcome.PositionChange
		p.Position.X, p.Position.Y = 0, 0
	}
	p.AddHistory(text, outcome.Stats, outcome.Events)
	p.Touch()

	var familyNews string
	if msg := s.family.CheckPregnancy(p); msg != "" && strings.Contains(msg, "birth to") {
		familyNews = msg
	}
	s.family.UpdateChildren(p)

	if err := s.store.PutPlayer(p); err != nil {
		return "", "", err
	}

	npcLines, err := s.npcs.ReactToAction(action, p, p.Position.Location)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"component": "engine",
			"error":     err.Error(),
		}).Warn("NPC reactions failed")
		npcLines = nil
	}

	nc := ai.NarrativeContext{
		PlayerName: p.DisplayName(),
		Location:   p.Position.Location,
		Hour:       ts.CurrentHour,
		Weather:    ts.Weather,
		ActionText: text,
		Outcome:    outcome,
		NPCLines:   npcLines,
		Money:      p.Inventory.Money,
		Health:     p.Stats.Health,
		Energy:     p.Stats.Energy,
	}
	narrative, err := s.narrator.Narrate(ctx, nc)
	if err != nil {
		// Не должно случаться: шаблонный нарратор безотказен.
		narrative = "Time passes in " + p.Position.Location + "."
	}

	var b strings.Builder
	b.WriteString(narrative)
	for _, line := range npcLines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if familyNews != "" {
		b.WriteString("\n\n")
		b.WriteString(familyNews)
	}
	if !p.IsAlive() {
		b.WriteString("\n\nEverything goes dark. You are dead. Type /start to begin a new life.")
	}

	return b.String(), s.illustrator.Illustrate(nc), nil
}

// matchDistrict ищет в тексте название района текущего города.
func (s *GameService) matchDistrict(p *domain.Player, text string) string {
	cm, ok := s.data.Cities[p.Position.Location]
	if !ok {
		return ""
	}
	lower := strings.ToLower(text)
	for key, d := range cm.Districts {
		if strings.Contains(lower, strings.ReplaceAll(key, "_", " ")) ||
			strings.Contains(lower, strings.ToLower(d.Name)) {
			return key
		}
	}
	return ""
}
