package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livium-server/internal/config"
	"livium-server/internal/domain"
	"livium-server/internal/storage"
	"livium-server/pkg/api"
)

func newTestService(t *testing.T) (*GameService, *storage.MemoryStore) {
	t.Helper()
	data, err := config.Load()
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	start := time.Unix(1_700_000_000, 0)
	svc, err := NewService(Options{
		Store: store,
		Data:  data,
		Seed:  42,
		Now:   func() time.Time { return start },
	})
	require.NoError(t, err)
	return svc, store
}

func send(t *testing.T, svc *GameService, sender, text string) api.OutboundMessage {
	t.Helper()
	out, err := svc.HandleMessage(context.Background(), api.InboundMessage{SenderID: sender, Text: text})
	require.NoError(t, err)
	return out
}

// createCharacter walks a fresh sender through the whole creation dialog.
func createCharacter(t *testing.T, svc *GameService, sender, name string) {
	t.Helper()
	out := send(t, svc, sender, "hello")
	require.Contains(t, out.Text, "name")
	send(t, svc, sender, name)
	send(t, svc, sender, "25")
	send(t, svc, sender, "female")
	out = send(t, svc, sender, "streetwise")
	require.Contains(t, out.Text, name)
}

func TestBootstrapSeedsWorldAndNPCs(t *testing.T) {
	svc, store := newTestService(t)

	world, err := store.GetWorld()
	require.NoError(t, err)
	require.NotNil(t, world)
	assert.Equal(t, 1, world.Time.CurrentDay)
	assert.NotEmpty(t, world.Time.Weather)

	npcs, err := store.NPCs()
	require.NoError(t, err)
	assert.Len(t, npcs, len(svc.data.NPCSeeds))
}

func TestBootstrapPreservesNPCState(t *testing.T) {
	data, err := config.Load()
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	require.NoError(t, store.PutNPC(&domain.NPC{ID: "npc_1", Name: "Jean", Location: "paris", Attitude: 12}))

	_, err = NewService(Options{Store: store, Data: data, Seed: 1})
	require.NoError(t, err)

	jean, err := store.GetNPC("npc_1")
	require.NoError(t, err)
	assert.Equal(t, 12, jean.Attitude)
}

func TestCreationDialog(t *testing.T) {
	svc, store := newTestService(t)

	out := send(t, svc, "u1", "hi")
	assert.Contains(t, out.Text, "Welcome to Livium")

	out = send(t, svc, "u1", "Marie")
	assert.Contains(t, out.Text, "How old")

	// Invalid age keeps the stage
	out = send(t, svc, "u1", "nine")
	assert.Contains(t, out.Text, "16 and 99")

	send(t, svc, "u1", "25")
	send(t, svc, "u1", "female")
	out = send(t, svc, "u1", "rich")
	assert.Contains(t, out.Text, "Marie")

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	assert.True(t, p.CharacterCreated)
	assert.Equal(t, "Marie", p.CustomName)
	assert.Equal(t, 2500, p.Inventory.Money) // 500 start + 2000 rich bonus
	assert.Equal(t, 5000, p.Inventory.Bank)
}

func TestGroupChatsOnlyHandleCommands(t *testing.T) {
	svc, _ := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out, err := svc.HandleMessage(context.Background(), api.InboundMessage{
		SenderID: "u1", Text: "walk around", IsGroup: true,
	})
	require.NoError(t, err)
	assert.Empty(t, out.Text)

	out, err = svc.HandleMessage(context.Background(), api.InboundMessage{
		SenderID: "u1", Text: "/stats", IsGroup: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Health")
}

func TestUnknownCommand(t *testing.T) {
	svc, _ := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out := send(t, svc, "u1", "/teleport")
	assert.Contains(t, out.Text, "Unknown command")
}

func TestFreeActionPipeline(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out := send(t, svc, "u1", "steal an apple from the market")
	assert.NotEmpty(t, out.Text)
	assert.NotEmpty(t, out.ImageURL)

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	require.Len(t, p.History, 1)
	entry := p.History[0]
	assert.Equal(t, "steal an apple from the market", entry.Action)
	// Either branch raises wanted and costs energy.
	assert.Greater(t, p.Stats.Wanted, 0)
	assert.Less(t, p.Stats.Energy, 100)
	hasOutcome := false
	for _, e := range entry.Events {
		if e == domain.EventTheftSuccess || e == domain.EventTheftFailed {
			hasOutcome = true
		}
	}
	assert.True(t, hasOutcome)

	// NPC in the same city reacted
	jean, err := store.GetNPC("npc_1")
	require.NoError(t, err)
	assert.Equal(t, 50, jean.Attitude)
	require.Len(t, jean.Memory, 1)
	assert.Equal(t, "u1", jean.Memory[0].PlayerID)
}

func TestImpossibleActionRejected(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out := send(t, svc, "u1", "I fly over the rooftops")
	assert.Contains(t, out.Text, "cannot fly")

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	assert.Empty(t, p.History)
}

func TestDeadPlayerGate(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	p.Stats.Health = 0
	require.NoError(t, store.PutPlayer(p))

	out := send(t, svc, "u1", "walk to the station")
	assert.Contains(t, out.Text, "You are dead")

	out = send(t, svc, "u1", "/stats")
	assert.Contains(t, out.Text, "You are dead")

	out = send(t, svc, "u1", "/start")
	assert.Contains(t, out.Text, "A new life begins")

	p, err = store.GetPlayer("u1")
	require.NoError(t, err)
	assert.True(t, p.IsAlive())
	assert.Equal(t, "Marie", p.CustomName) // identity preserved
	assert.Equal(t, 500, p.Inventory.Money)
	assert.Equal(t, "paris", p.Position.Location)
}

func TestTravelCommand(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out := send(t, svc, "u1", "/travel tokyo")
	assert.Contains(t, out.Text, "tokyo")

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	assert.Equal(t, "tokyo", p.Position.Location)
	assert.Equal(t, 90, p.Stats.Energy)
}

func TestVehiclePurchaseNeedsLicenseThroughCommands(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out := send(t, svc, "u1", "/buyvehicle scooter")
	assert.Contains(t, strings.ToLower(out.Text), "license")

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	assert.Equal(t, 500, p.Inventory.Money)
	assert.Empty(t, p.Inventory.Vehicles)
}

func TestBankingCommands(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	out := send(t, svc, "u1", "/deposit 200")
	assert.Contains(t, out.Text, "Deposited $200")

	out = send(t, svc, "u1", "/withdraw 50")
	assert.Contains(t, out.Text, "Withdrew $50")

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	assert.Equal(t, 350, p.Inventory.Money)
	assert.Equal(t, 150, p.Inventory.Bank)

	out = send(t, svc, "u1", "/withdraw 10000")
	assert.NotContains(t, out.Text, "Withdrew")
	p, _ = store.GetPlayer("u1")
	assert.Equal(t, 150, p.Inventory.Bank)
}

func TestMarriageThroughCommands(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")
	createCharacter(t, svc, "u2", "Jean")

	out := send(t, svc, "u1", "/marry u2")
	assert.Contains(t, out.Text, "propose")

	out = send(t, svc, "u2", "/acceptmarriage u1")
	assert.Contains(t, out.Text, "married")

	a, err := store.GetPlayer("u1")
	require.NoError(t, err)
	b, err := store.GetPlayer("u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", a.Family.Spouse)
	assert.Equal(t, "u1", b.Family.Spouse)
}

func TestDuelThroughCommands(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")
	createCharacter(t, svc, "u2", "Jean")

	send(t, svc, "u1", "/duel u2")
	out := send(t, svc, "u2", "/acceptduel u1")
	assert.Contains(t, out.Text, "wins")

	a, _ := store.GetPlayer("u1")
	b, _ := store.GetPlayer("u2")
	assert.Less(t, a.Stats.Health, 100)
	assert.Less(t, b.Stats.Health, 100)
	assert.Equal(t, 80, a.Stats.Energy)
}

func TestStatsEndpointSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	snap, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, "ok", snap.Status)
	assert.Equal(t, 1, snap.Players)
	assert.Equal(t, len(svc.data.NPCSeeds), snap.NPCs)
	assert.Equal(t, 1, snap.GameDay)
}

func TestWorkAttendanceWarningOncePerWindow(t *testing.T) {
	data, err := config.Load()
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	start := time.Unix(1_700_000_000, 0)
	var warnings []api.OutboundMessage
	svc, err := NewService(Options{
		Store:  store,
		Data:   data,
		Seed:   42,
		Now:    func() time.Time { return start },
		Notify: func(msg api.OutboundMessage) { warnings = append(warnings, msg) },
	})
	require.NoError(t, err)
	createCharacter(t, svc, "u1", "Marie")

	require.NoError(t, store.PutNPC(&domain.NPC{ID: "npc_boss_resto", Name: "Chef Antoine", Location: "paris", Attitude: 50}))
	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	p.SetJob("Waiter", 1000)
	require.NoError(t, store.PutPlayer(p))

	// 09:00, absent from work. The ticker runs every wall minute, but
	// one skipped shift earns exactly one reprimand.
	svc.burnGameMinutes(9 * 60)
	for i := 0; i < 15; i++ {
		svc.tickPlayers()
	}

	boss, err := store.GetNPC("npc_boss_resto")
	require.NoError(t, err)
	assert.Equal(t, 45, boss.Attitude)
	require.Len(t, boss.Memory, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, "u1", warnings[0].RecipientID)
	assert.Contains(t, warnings[0].Text, "Chef Antoine")

	// The evening shift of the same day is a fresh window.
	svc.burnGameMinutes(10 * 60) // 19:00
	for i := 0; i < 15; i++ {
		svc.tickPlayers()
	}

	boss, err = store.GetNPC("npc_boss_resto")
	require.NoError(t, err)
	assert.Equal(t, 40, boss.Attitude)
	assert.Len(t, warnings, 2)
}

func TestConceiveThroughCommands(t *testing.T) {
	svc, store := newTestService(t)
	createCharacter(t, svc, "u1", "Marie")

	// Husband: same dialog, male.
	send(t, svc, "u2", "hello")
	send(t, svc, "u2", "Pierre")
	send(t, svc, "u2", "30")
	send(t, svc, "u2", "male")
	send(t, svc, "u2", "streetwise")

	// Not married yet
	out := send(t, svc, "u1", "/conceive")
	assert.Contains(t, out.Text, "married")

	send(t, svc, "u1", "/marry u2")
	send(t, svc, "u2", "/acceptmarriage u1")

	// The husband initiates; the pregnancy lands on the wife.
	out = send(t, svc, "u2", "/conceive")
	assert.Contains(t, out.Text, "Marie is pregnant")

	wife, err := store.GetPlayer("u1")
	require.NoError(t, err)
	assert.True(t, wife.Family.Pregnant)

	// No double pregnancy
	out = send(t, svc, "u1", "/conceive")
	assert.Contains(t, out.Text, "already expecting")
}
