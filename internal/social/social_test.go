package social

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livium-server/internal/domain"
	"livium-server/internal/storage"
)

// scriptedRand replays preset ints for deterministic duel rolls.
type scriptedRand struct{ ints []int }

func (s *scriptedRand) Float64() float64 { return 0 }

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

func pair(t *testing.T) (*domain.Player, *domain.Player, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	a := domain.NewPlayer("alice", "Alice")
	b := domain.NewPlayer("bob", "Bob")
	require.NoError(t, store.PutPlayer(a))
	require.NoError(t, store.PutPlayer(b))
	return a, b, store
}

func TestMarriageFlow(t *testing.T) {
	a, b, store := pair(t)
	svc := New(store, &scriptedRand{})

	require.NoError(t, svc.ProposeMarriage(a, b))
	require.NoError(t, svc.AcceptMarriage(a, b))

	assert.Equal(t, "bob", a.Family.Spouse)
	assert.Equal(t, "alice", b.Family.Spouse)
	assert.Equal(t, "Bob", a.Family.SpouseName)
	assert.NotZero(t, a.Family.MarriedAt)
	assert.Equal(t, a.Family.MarriedAt, b.Family.MarriedAt)

	// Both records persisted
	stored, err := store.GetPlayer("bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Family.Spouse)
}

func TestProposeRejectsDuplicateAndSelf(t *testing.T) {
	a, b, store := pair(t)
	svc := New(store, &scriptedRand{})

	assert.Error(t, svc.ProposeMarriage(a, a))

	require.NoError(t, svc.ProposeMarriage(a, b))
	err := svc.ProposeMarriage(a, b)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonDuplicateRequest, domain.ReasonOf(err))
}

func TestProposeRejectsMarried(t *testing.T) {
	a, b, store := pair(t)
	b.Family.Spouse = "someone"
	svc := New(store, &scriptedRand{})

	err := svc.ProposeMarriage(a, b)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonNotEligible, domain.ReasonOf(err))
}

func TestAcceptWithoutProposal(t *testing.T) {
	a, b, store := pair(t)
	svc := New(store, &scriptedRand{})

	err := svc.AcceptMarriage(a, b)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonNoPendingRequest, domain.ReasonOf(err))
}

func TestAcceptRequiresSameCity(t *testing.T) {
	a, b, store := pair(t)
	b.Position.Location = "tokyo"
	svc := New(store, &scriptedRand{})

	require.NoError(t, svc.ProposeMarriage(a, b))
	err := svc.AcceptMarriage(a, b)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonDifferentCity, domain.ReasonOf(err))
	assert.Empty(t, a.Family.Spouse)
	assert.Empty(t, b.Family.Spouse)
}

func TestRefuseMarriage(t *testing.T) {
	a, b, store := pair(t)
	svc := New(store, &scriptedRand{})

	require.NoError(t, svc.ProposeMarriage(a, b))
	require.NoError(t, svc.RefuseMarriage("alice", "bob"))

	// Refused proposal is gone
	err := svc.AcceptMarriage(a, b)
	assert.Equal(t, domain.ReasonNoPendingRequest, domain.ReasonOf(err))
}

func TestRequestsExpire(t *testing.T) {
	a, b, store := pair(t)
	cur := time.Unix(1_700_000_000, 0)
	svc := NewWithNow(store, &scriptedRand{}, func() time.Time { return cur })

	require.NoError(t, svc.ProposeMarriage(a, b))
	cur = cur.Add(11 * time.Minute)

	err := svc.AcceptMarriage(a, b)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonNoPendingRequest, domain.ReasonOf(err))

	// Expiry frees the slot for a fresh proposal
	assert.NoError(t, svc.ProposeMarriage(a, b))
}

func TestDuelDamageFormula(t *testing.T) {
	a, b, store := pair(t)
	a.Skills["combat"] = 50
	// Challenger rolls 14, challenged rolls 0.
	svc := New(store, &scriptedRand{ints: []int{14, 0}})

	require.NoError(t, svc.ChallengeDuel(a, b))
	res, err := svc.AcceptDuel(a, b)
	require.NoError(t, err)

	assert.Equal(t, 34, res.ChallengerDamage) // 10 + 50/5 + 14
	assert.Equal(t, 10, res.ChallengedDamage) // 10 + 0 + 0
	assert.Equal(t, "alice", res.Winner.ID)
	assert.Equal(t, "bob", res.Loser.ID)

	// Each side takes the opponent's damage plus the energy cost.
	assert.Equal(t, 100-10, a.Stats.Health)
	assert.Equal(t, 100-34, b.Stats.Health)
	assert.Equal(t, 80, a.Stats.Energy)
	assert.Equal(t, 80, b.Stats.Energy)

	stored, err := store.GetPlayer("bob")
	require.NoError(t, err)
	assert.Equal(t, 66, stored.Stats.Health)
}

func TestDuelTieFavorsChallenged(t *testing.T) {
	a, b, store := pair(t)
	svc := New(store, &scriptedRand{ints: []int{5, 5}})

	require.NoError(t, svc.ChallengeDuel(a, b))
	res, err := svc.AcceptDuel(a, b)
	require.NoError(t, err)

	assert.Equal(t, res.ChallengerDamage, res.ChallengedDamage)
	assert.Equal(t, "bob", res.Winner.ID)
}

func TestDuelRequiresPendingChallenge(t *testing.T) {
	a, b, store := pair(t)
	svc := New(store, &scriptedRand{})

	_, err := svc.AcceptDuel(a, b)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonNoPendingRequest, domain.ReasonOf(err))

	require.NoError(t, svc.ChallengeDuel(a, b))
	require.NoError(t, svc.RefuseDuel("alice", "bob"))
	_, err = svc.AcceptDuel(a, b)
	assert.Equal(t, domain.ReasonNoPendingRequest, domain.ReasonOf(err))
}
