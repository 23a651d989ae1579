// Package clock ведет ускоренное игровое время: 24 игровых часа на один
// реальный час. Все функции детерминированы относительно TimeState,
// кроме выпадения погоды.
package clock

import (
	"time"

	"livium-server/internal/domain"
)

// TimeRatio - коэффициент ускорения: игровой час = реальный час / 24.
const TimeRatio = 24

// gameHourWall - сколько реального времени длится один игровой час.
const gameHourWall = time.Hour / TimeRatio

// Погодные состояния. Выпадают равновероятно на границах 3 игровых часов.
var weatherTypes = []string{"sunny", "cloudy", "rainy", "stormy", "foggy"}

// Period - время суток.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
	PeriodNight     = "night"
)

// Clock пересчитывает игровое время. Источники времени и случайности
// инжектируются, чтобы тесты были детерминированными.
type Clock struct {
	now func() time.Time
	rng domain.Rand
}

// New создает часы на реальном времени.
func New(rng domain.Rand) *Clock {
	return &Clock{now: time.Now, rng: rng}
}

// NewWithNow создает часы с подмененным источником времени (тесты).
func NewWithNow(now func() time.Time, rng domain.Rand) *Clock {
	return &Clock{now: now, rng: rng}
}

// Advance пересчитывает день/час из прошедшего реального времени и
// перевыбирает погоду при пересечении границы 3 игровых часов.
// Возвращает true, если игровой час сменился.
func (c *Clock) Advance(ts *domain.TimeState) bool {
	nowMs := c.now().UnixMilli()
	if ts.StartTime == 0 {
		ts.StartTime = nowMs
	}

	elapsed := nowMs - ts.StartTime
	hoursElapsed := int(elapsed / gameHourWall.Milliseconds())

	oldHour := ts.CurrentHour
	// Сквозной индекс 3-часового блока: сравнение часа суток пропустило
	// бы скачок ровно на сутки (час тот же, блоков прошло восемь).
	oldBlock := ((ts.CurrentDay-1)*24 + ts.CurrentHour) / 3
	ts.CurrentDay = hoursElapsed/24 + 1
	ts.CurrentHour = hoursElapsed % 24

	// Погода живет блоками по 3 игровых часа.
	if hoursElapsed/3 != oldBlock || ts.Weather == "" {
		ts.Weather = weatherTypes[c.rng.Intn(len(weatherTypes))]
	}

	return oldHour != ts.CurrentHour
}

// AdvanceGameMinutes прожигает n игровых минут (поездка, авария):
// якорь сдвигается НАЗАД на реальный эквивалент, затем время пересчитывается.
func (c *Clock) AdvanceGameMinutes(ts *domain.TimeState, minutes int) {
	ts.StartTime -= int64(minutes) * gameHourWall.Milliseconds() / 60
	c.Advance(ts)
}

// PeriodForHour - чистое отображение часа во время суток.
func PeriodForHour(h int) string {
	switch {
	case h >= 6 && h < 12:
		return PeriodMorning
	case h >= 12 && h < 18:
		return PeriodAfternoon
	case h >= 18 && h < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// IsWorkHour: рабочие окна - [8,13] и с 19:00.
func IsWorkHour(h int) bool {
	return (h >= 8 && h <= 13) || h >= 19
}
