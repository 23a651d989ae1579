// Package consequence - расчет последствий свободного действия.
//
// Движок чистый: на вход снимки игрока, локации и часов плюс источник
// случайности, на выходе Consequence. Мутации и клампинг делает оркестратор.
package consequence

import (
	"strings"

	"livium-server/internal/clock"
	"livium-server/internal/domain"
)

// --- КОНСТАНТЫ ИСХОДОВ ---

const (
	theftMental     = -10
	theftEnergy     = -15
	theftBaseWanted = 20
	theftFailHealth = -20
	theftFailWanted = 30
	theftLootMin    = 100
	theftLootSpan   = 500 // loot = min + rand(span), итого [100,600)

	combatEnergy     = -25
	combatMental     = -15
	combatWinHealth  = -10
	combatLossHealth = -35
	combatLossWanted = 15

	socialEnergy = -5
	socialMental = 5

	commerceEnergy = -3

	policeStopChance = 0.30
	policeStopHealth = -10

	nightMental = -5
)

// Расход энергии перемещения по интенсивности.
var movementEnergy = map[string]int{
	domain.IntensityLow:      -3,
	domain.IntensityModerate: -8,
	domain.IntensityHigh:     -15,
	domain.IntensityExtreme:  -25,
}

// Engine считает последствия. knownCities нужен, чтобы распознавать
// место назначения в тексте перемещения.
type Engine struct {
	knownCities []string
	rng         domain.Rand
}

func New(knownCities []string, rng domain.Rand) *Engine {
	return &Engine{knownCities: knownCities, rng: rng}
}

// Calculate: категория задает базовый исход, затем накладываются
// модификаторы локации и времени суток.
func (e *Engine) Calculate(action domain.ClassifiedAction, player *domain.Player, loc *domain.Location, hour int) domain.Consequence {
	var c domain.Consequence

	switch action.Category {
	case domain.ActionMovement:
		e.applyMovement(action, &c)
	case domain.ActionTheft:
		e.applyTheft(action, &c)
	case domain.ActionCombat:
		e.applyCombat(&c)
	case domain.ActionSocial:
		c.Stats.Energy = socialEnergy
		c.Stats.Mental = socialMental
		c.Events = append(c.Events, domain.EventSocial)
	case domain.ActionCommerce:
		c.Stats.Energy = commerceEnergy
		c.Events = append(c.Events, domain.EventTransaction)
	case domain.ActionRest:
		applyRest(action, &c)
	default:
		c.Stats.Energy = -5
		c.Stats.Hunger = -1
	}

	e.applyModifiers(action, player, loc, hour, &c)
	return c
}

func (e *Engine) applyMovement(action domain.ClassifiedAction, c *domain.Consequence) {
	cost, ok := movementEnergy[action.Intensity]
	if !ok {
		cost = movementEnergy[domain.IntensityModerate]
	}
	c.Stats.Energy = cost
	c.Stats.Hunger = -2

	text := strings.ToLower(action.OriginalText)
	for _, city := range e.knownCities {
		if strings.Contains(text, city) {
			c.PositionChange = city
			break
		}
	}
}

func (e *Engine) applyTheft(action domain.ClassifiedAction, c *domain.Consequence) {
	c.Stats.Mental = theftMental
	c.Stats.Energy = theftEnergy
	c.Stats.Wanted = theftBaseWanted + action.Risk/2

	if e.rng.Float64() < 1-float64(action.Risk)/100 {
		c.CashDelta = theftLootMin + e.rng.Intn(theftLootSpan)
		c.Events = append(c.Events, domain.EventTheftSuccess)
		return
	}
	c.Stats.Health = theftFailHealth
	c.Stats.Wanted += theftFailWanted
	c.Events = append(c.Events, domain.EventTheftFailed)
}

func (e *Engine) applyCombat(c *domain.Consequence) {
	// Драка выматывает независимо от исхода.
	c.Stats.Energy = combatEnergy
	c.Stats.Mental = combatMental

	if e.rng.Float64() < 0.5 {
		c.Stats.Health = combatWinHealth
		c.Events = append(c.Events, domain.EventCombatWon)
		return
	}
	c.Stats.Health = combatLossHealth
	c.Stats.Wanted = combatLossWanted
	c.Events = append(c.Events, domain.EventCombatLost)
}

// applyRest: подтип по ключевым словам, сон и еда приоритетнее общего отдыха.
func applyRest(action domain.ClassifiedAction, c *domain.Consequence) {
	text := strings.ToLower(action.OriginalText)
	switch {
	case strings.Contains(text, "sleep") || strings.Contains(text, "nap"):
		c.Stats.Energy = 50
		c.Stats.Health = 15
		c.Stats.Mental = 30
	case strings.Contains(text, "eat") || strings.Contains(text, "food") || strings.Contains(text, "meal"):
		c.Stats.Hunger = 40
		c.Stats.Energy = 10
		c.CashDelta = -15
	default:
		c.Stats.Energy = 20
		c.Stats.Mental = 10
	}
}

// applyModifiers накладывает эффекты локации и времени суток.
func (e *Engine) applyModifiers(action domain.ClassifiedAction, player *domain.Player, loc *domain.Location, hour int, c *domain.Consequence) {
	if loc != nil && loc.Police > 70 && player.Stats.Wanted > 50 && e.rng.Float64() < policeStopChance {
		c.Stats.Health += policeStopHealth
		c.Events = append(c.Events, domain.EventPoliceStop)
	}

	if clock.PeriodForHour(hour) == clock.PeriodNight && action.Category == domain.ActionMovement {
		c.Stats.Mental += nightMental
		if loc != nil && loc.Danger > 60 {
			c.Events = append(c.Events, domain.EventNightDanger)
		}
	}
}
