package domain

import "time"

const maxNPCMemory = 20

// NPCMemory - одна запись памяти NPC о действии игрока.
type NPCMemory struct {
	PlayerID  string `json:"playerId"`
	Action    string `json:"action"`
	Impact    int    `json:"impact"`
	Timestamp int64  `json:"timestamp"`
}

// NPC - неигровой персонаж. Создается при бутстрапе мира из сид-данных,
// никогда не удаляется.
type NPC struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Personality string `json:"personality"`

	// Attitude - отношение к игрокам вообще, [0,100].
	Attitude int `json:"attitude"`

	// Memory - кольцевой буфер последних наблюдений, не длиннее 20.
	Memory []NPCMemory `json:"memory"`
}

// AdjustAttitude прибавляет дельту с клампом в [0,100].
func (n *NPC) AdjustAttitude(delta int) {
	v := n.Attitude + delta
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	n.Attitude = v
}

// Remember добавляет запись, вытесняя самую старую при переполнении (FIFO).
func (n *NPC) Remember(playerID, action string, impact int) {
	n.Memory = append(n.Memory, NPCMemory{
		PlayerID:  playerID,
		Action:    action,
		Impact:    impact,
		Timestamp: time.Now().UnixMilli(),
	})
	if len(n.Memory) > maxNPCMemory {
		n.Memory = n.Memory[len(n.Memory)-maxNPCMemory:]
	}
}

// MemoryOf возвращает записи про конкретного игрока.
func (n *NPC) MemoryOf(playerID string) []NPCMemory {
	var out []NPCMemory
	for _, m := range n.Memory {
		if m.PlayerID == playerID {
			out = append(out, m)
		}
	}
	return out
}
