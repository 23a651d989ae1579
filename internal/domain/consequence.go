package domain

// Теги событий. Их читают и механика (движок, реакции NPC), и нарратор.
const (
	EventTheftSuccess = "theft_success"
	EventTheftFailed  = "theft_failed"
	EventCombatWon    = "combat_won"
	EventCombatLost   = "combat_lost"
	EventSocial       = "social_interaction"
	EventTransaction  = "transaction"
	EventPoliceStop   = "police_stop"
	EventNightDanger  = "night_danger"
)

// Consequence - чистый результат работы движка последствий.
// Движок НЕ трогает игрока: оркестратор применяет дельты сам
// (через Player.ApplyStats, клампинг там).
type Consequence struct {
	Stats StatDelta `json:"stats"`

	// PositionChange - id города, распознанный в тексте действия.
	// Пустая строка = позиция не меняется.
	PositionChange string `json:"positionChange,omitempty"`

	// CashDelta - изменение наличных (награда за кражу, цена еды).
	CashDelta int `json:"cashDelta,omitempty"`

	// Events - дискретные теги случившегося, ровно по одному на исход.
	Events []string `json:"events,omitempty"`
}

// HasEvent сообщает, есть ли тег в списке.
func (c Consequence) HasEvent(tag string) bool {
	for _, e := range c.Events {
		if e == tag {
			return true
		}
	}
	return false
}
