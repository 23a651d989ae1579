package domain

// TimeState - якорь игрового времени и производные поля.
// StartTime ставится один раз при первом запуске и дальше только
// сдвигается НАЗАД (advance_by_minutes), никогда вперед.
type TimeState struct {
	StartTime   int64  `json:"startTime"`
	CurrentDay  int    `json:"currentDay"`
	CurrentHour int    `json:"currentHour"`
	Weather     string `json:"weatherCondition"`
}

// Location - город мира со статическими оценками опасности и полиции.
type Location struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Danger      int    `json:"danger" yaml:"danger"`
	Police      int    `json:"police" yaml:"police"`
}

// World - разделяемое состояние мира. Локации статичны (из конфига),
// меняется только время/погода.
type World struct {
	Time      TimeState           `json:"time"`
	Locations map[string]Location `json:"locations"`
}

// Location возвращает город по id, nil если такого нет.
func (w *World) Location(id string) *Location {
	if loc, ok := w.Locations[id]; ok {
		return &loc
	}
	return nil
}
