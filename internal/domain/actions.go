package domain

import "strings"

// ActionCategory - грубая категория свободного действия.
// Ее выдает классификатор (внешний или деградированный словарный).
type ActionCategory uint8

const (
	ActionUnknown ActionCategory = iota
	ActionMovement
	ActionTheft
	ActionCombat
	ActionSocial
	ActionCommerce
	ActionRest
)

var categoryToString = map[ActionCategory]string{
	ActionUnknown:  "unknown",
	ActionMovement: "movement",
	ActionTheft:    "theft",
	ActionCombat:   "combat",
	ActionSocial:   "social",
	ActionCommerce: "commerce",
	ActionRest:     "rest",
}

var stringToCategory = map[string]ActionCategory{
	"unknown":  ActionUnknown,
	"movement": ActionMovement,
	"theft":    ActionTheft,
	"combat":   ActionCombat,
	"social":   ActionSocial,
	"commerce": ActionCommerce,
	"rest":     ActionRest,
}

// ParseCategory конвертирует строку классификатора в ActionCategory.
// Незнакомые значения сворачиваются в ActionUnknown - это валидный вход.
func ParseCategory(s string) ActionCategory {
	if c, ok := stringToCategory[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return ActionUnknown
}

// String реализует fmt.Stringer.
func (c ActionCategory) String() string {
	if s, ok := categoryToString[c]; ok {
		return s
	}
	return "unknown"
}

// Интенсивность действия. Влияет на расход энергии при перемещении.
const (
	IntensityLow      = "low"
	IntensityModerate = "moderate"
	IntensityHigh     = "high"
	IntensityExtreme  = "extreme"
)

// ClassifiedAction - результат классификации свободного текста.
type ClassifiedAction struct {
	Category  ActionCategory `json:"category"`
	Intensity string         `json:"intensity"`
	// Risk - числовой риск [0,100]; определяет вероятность провала кражи.
	Risk   int    `json:"risk"`
	Target string `json:"target,omitempty"`
	// OriginalText - исходный текст игрока; нужен движку последствий
	// для распознавания места назначения и подтипа отдыха.
	OriginalText string `json:"originalText"`
}
