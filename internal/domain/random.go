package domain

// Rand - единый источник случайности для всех вероятностных веток
// (кражи, дуэли, погода, аварии). В проде это *rand.Rand за мьютексом,
// в тестах - детерминированный сид. Инлайновых вызовов math/rand в
// подсистемах быть не должно.
type Rand interface {
	// Intn возвращает равномерное число из [0,n).
	Intn(n int) int
	// Float64 возвращает равномерное число из [0,1).
	Float64() float64
}
