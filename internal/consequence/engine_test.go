package consequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livium-server/internal/domain"
)

// scriptedRand replays preset values so the branch under test is forced.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

var cities = []string{"paris", "tokyo", "new_york"}

func calmLocation() *domain.Location {
	return &domain.Location{ID: "paris", Danger: 30, Police: 50}
}

func TestTheftFailureAtHighRisk(t *testing.T) {
	// p(success) = 1 - 70/100 = 0.30; a draw of 0.90 forces the failure branch.
	eng := New(cities, &scriptedRand{floats: []float64{0.90}})
	p := domain.NewPlayer("p1", "Thief")

	action := domain.ClassifiedAction{Category: domain.ActionTheft, Risk: 70, OriginalText: "rob the jewelry store"}
	c := eng.Calculate(action, p, calmLocation(), 12)

	assert.Equal(t, -20, c.Stats.Health)
	assert.Equal(t, -10, c.Stats.Mental)
	assert.Equal(t, -15, c.Stats.Energy)
	assert.Equal(t, 85, c.Stats.Wanted) // 20 + 70/2 + 30
	assert.GreaterOrEqual(t, c.Stats.Wanted, 40)
	assert.Equal(t, 0, c.CashDelta)
	assert.True(t, c.HasEvent(domain.EventTheftFailed))
	assert.False(t, c.HasEvent(domain.EventTheftSuccess))
}

func TestTheftSuccessPaysAndRaisesWantedLess(t *testing.T) {
	eng := New(cities, &scriptedRand{floats: []float64{0.10}, ints: []int{250}})
	p := domain.NewPlayer("p1", "Thief")

	action := domain.ClassifiedAction{Category: domain.ActionTheft, Risk: 30}
	c := eng.Calculate(action, p, calmLocation(), 12)

	assert.True(t, c.HasEvent(domain.EventTheftSuccess))
	assert.False(t, c.HasEvent(domain.EventTheftFailed))
	assert.Equal(t, 350, c.CashDelta) // 100 + 250
	assert.Equal(t, 0, c.Stats.Health)
	assert.Equal(t, 35, c.Stats.Wanted) // 20 + 30/2

	// Failure at the same risk must raise wanted strictly more.
	fail := New(cities, &scriptedRand{floats: []float64{0.95}}).
		Calculate(action, p, calmLocation(), 12)
	assert.Greater(t, fail.Stats.Wanted, c.Stats.Wanted)
}

func TestTheftLootRange(t *testing.T) {
	for _, draw := range []int{0, 250, 499} {
		eng := New(cities, &scriptedRand{floats: []float64{0.0}, ints: []int{draw}})
		c := eng.Calculate(domain.ClassifiedAction{Category: domain.ActionTheft, Risk: 10},
			domain.NewPlayer("p", "P"), calmLocation(), 12)
		assert.GreaterOrEqual(t, c.CashDelta, 100)
		assert.Less(t, c.CashDelta, 600)
	}
}

func TestCombatOutcomes(t *testing.T) {
	win := New(cities, &scriptedRand{floats: []float64{0.25}}).
		Calculate(domain.ClassifiedAction{Category: domain.ActionCombat},
			domain.NewPlayer("p", "P"), calmLocation(), 12)
	assert.Equal(t, -10, win.Stats.Health)
	assert.Equal(t, 0, win.Stats.Wanted)
	// Fighting is exhausting whatever the outcome.
	assert.Equal(t, -25, win.Stats.Energy)
	assert.Equal(t, -15, win.Stats.Mental)
	assert.True(t, win.HasEvent(domain.EventCombatWon))

	loss := New(cities, &scriptedRand{floats: []float64{0.75}}).
		Calculate(domain.ClassifiedAction{Category: domain.ActionCombat},
			domain.NewPlayer("p", "P"), calmLocation(), 12)
	assert.Equal(t, -35, loss.Stats.Health)
	assert.Equal(t, 15, loss.Stats.Wanted)
	assert.Equal(t, -25, loss.Stats.Energy)
	assert.Equal(t, -15, loss.Stats.Mental)
	assert.True(t, loss.HasEvent(domain.EventCombatLost))
}

func TestMovementIntensityAndDestination(t *testing.T) {
	eng := New(cities, &scriptedRand{})
	p := domain.NewPlayer("p", "P")

	cases := map[string]int{
		domain.IntensityLow:      -3,
		domain.IntensityModerate: -8,
		domain.IntensityHigh:     -15,
		domain.IntensityExtreme:  -25,
		"garbage":                -8, // unknown intensity falls back to moderate
	}
	for intensity, want := range cases {
		c := eng.Calculate(domain.ClassifiedAction{
			Category:  domain.ActionMovement,
			Intensity: intensity,
		}, p, calmLocation(), 12)
		assert.Equal(t, want, c.Stats.Energy, "intensity %s", intensity)
		assert.Equal(t, -2, c.Stats.Hunger)
	}

	c := eng.Calculate(domain.ClassifiedAction{
		Category:     domain.ActionMovement,
		Intensity:    domain.IntensityModerate,
		OriginalText: "I take the train to Tokyo",
	}, p, calmLocation(), 12)
	assert.Equal(t, "tokyo", c.PositionChange)
}

func TestRestSubBranches(t *testing.T) {
	eng := New(cities, &scriptedRand{})
	p := domain.NewPlayer("p", "P")

	sleep := eng.Calculate(domain.ClassifiedAction{Category: domain.ActionRest, OriginalText: "go to sleep"}, p, calmLocation(), 12)
	assert.Equal(t, domain.StatDelta{Energy: 50, Health: 15, Mental: 30}, sleep.Stats)

	eat := eng.Calculate(domain.ClassifiedAction{Category: domain.ActionRest, OriginalText: "eat a sandwich"}, p, calmLocation(), 12)
	assert.Equal(t, domain.StatDelta{Hunger: 40, Energy: 10}, eat.Stats)
	assert.Equal(t, -15, eat.CashDelta)

	generic := eng.Calculate(domain.ClassifiedAction{Category: domain.ActionRest, OriginalText: "relax on a bench"}, p, calmLocation(), 12)
	assert.Equal(t, domain.StatDelta{Energy: 20, Mental: 10}, generic.Stats)
}

func TestPoliceStopModifier(t *testing.T) {
	hotLocation := &domain.Location{ID: "dubai", Danger: 20, Police: 90}
	wanted := domain.NewPlayer("p", "P")
	wanted.Stats.Wanted = 60

	// The social branch draws no randomness, so the single draw (0.10 < 0.30)
	// is the police check.
	c := New(cities, &scriptedRand{floats: []float64{0.10}}).
		Calculate(domain.ClassifiedAction{Category: domain.ActionSocial}, wanted, hotLocation, 12)
	require.True(t, c.HasEvent(domain.EventPoliceStop))
	assert.Equal(t, -10, c.Stats.Health)

	// Draw above the threshold: no stop.
	c = New(cities, &scriptedRand{floats: []float64{0.50}}).
		Calculate(domain.ClassifiedAction{Category: domain.ActionSocial}, wanted, hotLocation, 12)
	assert.False(t, c.HasEvent(domain.EventPoliceStop))

	// Low wanted level: never stopped.
	calm := domain.NewPlayer("p", "P")
	c = New(cities, &scriptedRand{floats: []float64{0.01}}).
		Calculate(domain.ClassifiedAction{Category: domain.ActionSocial}, calm, hotLocation, 12)
	assert.False(t, c.HasEvent(domain.EventPoliceStop))
}

func TestNightMovementModifier(t *testing.T) {
	dangerous := &domain.Location{ID: "banlieue_nord", Danger: 70, Police: 30}
	p := domain.NewPlayer("p", "P")
	action := domain.ClassifiedAction{Category: domain.ActionMovement, Intensity: domain.IntensityLow}

	night := New(cities, &scriptedRand{}).Calculate(action, p, dangerous, 23)
	assert.Equal(t, -5, night.Stats.Mental)
	assert.True(t, night.HasEvent(domain.EventNightDanger))

	day := New(cities, &scriptedRand{}).Calculate(action, p, dangerous, 14)
	assert.Equal(t, 0, day.Stats.Mental)
	assert.False(t, day.HasEvent(domain.EventNightDanger))

	// Night in a safe district: mental hit but no danger event.
	safe := &domain.Location{ID: "centre", Danger: 20, Police: 80}
	c := New(cities, &scriptedRand{}).Calculate(action, p, safe, 2)
	assert.Equal(t, -5, c.Stats.Mental)
	assert.False(t, c.HasEvent(domain.EventNightDanger))
}

func TestUnknownCategoryDefault(t *testing.T) {
	c := New(cities, &scriptedRand{}).
		Calculate(domain.ClassifiedAction{Category: domain.ActionUnknown},
			domain.NewPlayer("p", "P"), calmLocation(), 12)
	assert.Equal(t, domain.StatDelta{Energy: -5, Hunger: -1}, c.Stats)
	assert.Empty(t, c.Events)
}
