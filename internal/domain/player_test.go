package domain

import "testing"

func TestApplyStatsClamping(t *testing.T) {
	p := NewPlayer("p1", "Tester")

	// Huge negative delta clamps at 0
	p.ApplyStats(StatDelta{Health: -500, Energy: -500})
	if p.Stats.Health != 0 || p.Stats.Energy != 0 {
		t.Errorf("expected 0/0, got %d/%d", p.Stats.Health, p.Stats.Energy)
	}

	// Huge positive delta clamps at 100
	p.ApplyStats(StatDelta{Health: 9999, Wanted: 9999})
	if p.Stats.Health != 100 || p.Stats.Wanted != 100 {
		t.Errorf("expected 100/100, got %d/%d", p.Stats.Health, p.Stats.Wanted)
	}
}

func TestIsAliveTracksHealth(t *testing.T) {
	p := NewPlayer("p1", "Tester")
	if !p.IsAlive() {
		t.Error("new player must be alive")
	}
	p.ApplyStats(StatDelta{Health: -100})
	if p.Stats.Health != 0 {
		t.Fatalf("health should be 0, got %d", p.Stats.Health)
	}
	if p.IsAlive() {
		t.Error("player with health 0 must be dead")
	}
	p.ApplyStats(StatDelta{Health: 1})
	if !p.IsAlive() {
		t.Error("health 1 means alive")
	}
}

func TestHistoryBounded(t *testing.T) {
	p := NewPlayer("p1", "Tester")
	for i := 0; i < 75; i++ {
		p.AddHistory("walk", StatDelta{Energy: -1}, nil)
	}
	if len(p.History) != maxHistory {
		t.Errorf("history length = %d, want %d", len(p.History), maxHistory)
	}
}

func TestSetJobKeepsExperienceInvariant(t *testing.T) {
	p := NewPlayer("p1", "Tester")
	p.SetJob("Waiter", 1000)
	if _, ok := p.Job.Experience["Waiter"]; !ok {
		t.Error("experience entry must exist for current job")
	}

	earned := p.AddWorkHours(4)
	if earned != 100 {
		t.Errorf("earnings = %d, want 100", earned)
	}
	if p.Job.Experience["Waiter"] != 4 {
		t.Errorf("experience = %d, want 4", p.Job.Experience["Waiter"])
	}
}

func TestSkillCap(t *testing.T) {
	p := NewPlayer("p1", "Tester")
	p.AddSkillXP("driving", 250)
	if p.Skills["driving"] != 100 {
		t.Errorf("skill = %d, want 100", p.Skills["driving"])
	}
}

func TestResetPreservesIdentity(t *testing.T) {
	p := NewPlayer("p1", "Tester")
	p.CustomName = "Marcel"
	p.Age = 30
	p.Background = "mechanic"
	p.CharacterCreated = true
	p.CreationStage = StageComplete
	p.ApplyStats(StatDelta{Health: -100})
	p.Licenses.Driving = true

	p.Reset()

	if p.Stats.Health != 100 {
		t.Errorf("health after reset = %d, want 100", p.Stats.Health)
	}
	if p.CustomName != "Marcel" || p.Age != 30 {
		t.Error("identity must survive reset")
	}
	if p.Licenses.Driving {
		t.Error("licenses must be cleared on reset")
	}
	if p.Position.Location != startCity {
		t.Errorf("position after reset = %s, want %s", p.Position.Location, startCity)
	}
}

func TestNPCMemoryFIFO(t *testing.T) {
	n := &NPC{ID: "npc_1", Name: "Jean", Attitude: 50}
	for i := 0; i < 30; i++ {
		n.Remember("p1", "committed a theft", -20)
	}
	if len(n.Memory) != maxNPCMemory {
		t.Errorf("memory length = %d, want %d", len(n.Memory), maxNPCMemory)
	}

	// Oldest evicted first: after appending a distinct entry the tail holds it
	n.Remember("p2", "was friendly", 5)
	if len(n.Memory) != maxNPCMemory {
		t.Errorf("memory length = %d, want %d", len(n.Memory), maxNPCMemory)
	}
	if n.Memory[maxNPCMemory-1].PlayerID != "p2" {
		t.Error("newest entry must be at the tail")
	}
}

func TestNPCAttitudeClamp(t *testing.T) {
	n := &NPC{Attitude: 90}
	n.AdjustAttitude(50)
	if n.Attitude != 100 {
		t.Errorf("attitude = %d, want 100", n.Attitude)
	}
	n.AdjustAttitude(-300)
	if n.Attitude != 0 {
		t.Errorf("attitude = %d, want 0", n.Attitude)
	}
}

func TestCreationFSM(t *testing.T) {
	p := NewPlayer("p1", "Tester")

	if _, done := p.AdvanceCreation("Marcel"); done {
		t.Fatal("creation must not finish on name step")
	}
	if p.CreationStage != StageAge {
		t.Fatalf("stage = %q, want age", p.CreationStage)
	}

	// Invalid age keeps the stage
	p.AdvanceCreation("not-a-number")
	if p.CreationStage != StageAge {
		t.Error("invalid age must not advance the stage")
	}

	p.AdvanceCreation("30")
	p.AdvanceCreation("male")
	_, done := p.AdvanceCreation("mechanic")
	if !done || !p.CharacterCreated {
		t.Fatal("creation must complete after background")
	}
	if p.Skills["repair"] != 20 || p.Skills["driving"] != 10 {
		t.Errorf("mechanic bonuses not applied: %v", p.Skills)
	}
}
