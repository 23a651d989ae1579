// Package npc - отношение и память неигровых персонажей.
package npc

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"livium-server/internal/domain"
	"livium-server/internal/storage"
	"livium-server/pkg/logger"
)

// Тона реакции по отношению.
const (
	ToneFriendly = "friendly"
	ToneNeutral  = "neutral"
	ToneWary     = "wary"
	ToneHostile  = "hostile"
)

// Registry - сервис над записями NPC в хранилище.
// Все read-modify-write на NPC идут под mu: конкурирующие действия в
// одной локации не должны терять обновления отношения/памяти.
type Registry struct {
	mu    sync.Mutex
	store storage.Store
	rng   domain.Rand
}

func NewRegistry(store storage.Store, rng domain.Rand) *Registry {
	return &Registry{store: store, rng: rng}
}

// NPCsIn возвращает NPC, находящихся в локации.
func (r *Registry) NPCsIn(locationID string) ([]*domain.NPC, error) {
	all, err := r.store.NPCs()
	if err != nil {
		return nil, err
	}
	var out []*domain.NPC
	for _, n := range all {
		if n.Location == locationID {
			out = append(out, n)
		}
	}
	return out, nil
}

// AdjustAttitude меняет отношение NPC с клампом и персистит.
func (r *Registry) AdjustAttitude(npcID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adjustLocked(npcID, "", "", delta)
}

// adjustLocked: общий путь мутации. Если label непустой, пишется и память.
func (r *Registry) adjustLocked(npcID, playerID, label string, delta int) error {
	n, err := r.store.GetNPC(npcID)
	if err != nil {
		return err
	}
	if n == nil {
		return domain.NewValidationError("unknown npc %q", npcID)
	}
	n.AdjustAttitude(delta)
	if label != "" {
		n.Remember(playerID, label, delta)
	}
	return r.store.PutNPC(n)
}

// Tone выбирает тон реакции по отношению:
// >70 дружелюбный, <30 враждебный, [30,50) настороженный, иначе нейтральный.
func Tone(attitude int) string {
	switch {
	case attitude > 70:
		return ToneFriendly
	case attitude < 30:
		return ToneHostile
	case attitude < 50:
		return ToneWary
	default:
		return ToneNeutral
	}
}

var toneLines = map[string][]string{
	ToneFriendly: {
		"%s gives you a warm smile.",
		"%s greets you enthusiastically.",
		"%s seems delighted to see you.",
	},
	ToneNeutral: {
		"%s looks at you with indifference.",
		"%s barely notices you.",
		"%s carries on without paying you much attention.",
	},
	ToneWary: {
		"%s watches you out of the corner of their eye.",
		"%s keeps their distance.",
		"%s seems on guard around you.",
	},
	ToneHostile: {
		"%s shoots you a dark look.",
		"%s glares at you with open hostility.",
		"%s looks ready for trouble.",
	},
}

// ReactionLine возвращает одну шаблонную реплику для NPC.
// Шаблон выбирается псевдослучайно, прошлый выбор не запоминается.
func (r *Registry) ReactionLine(n *domain.NPC) string {
	lines := toneLines[Tone(n.Attitude)]
	return fmt.Sprintf(lines[r.rng.Intn(len(lines))], n.Name)
}

// attitudeImpact - дельта отношения по категории действия.
func attitudeImpact(cat domain.ActionCategory) (int, string) {
	switch cat {
	case domain.ActionTheft:
		return -20, "committed a theft"
	case domain.ActionCombat:
		return -15, "was violent"
	case domain.ActionSocial:
		return 5, "was friendly"
	case domain.ActionCommerce:
		return 3, "did some trade"
	default:
		return 0, ""
	}
}

// ReactToAction: каждый NPC в локации обновляет отношение, запоминает
// поступок и выдает одну реплику.
func (r *Registry) ReactToAction(action domain.ClassifiedAction, player *domain.Player, locationID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	present, err := r.NPCsIn(locationID)
	if err != nil {
		return nil, err
	}

	delta, label := attitudeImpact(action.Category)
	var reactions []string
	for _, n := range present {
		if delta != 0 {
			if err := r.adjustLocked(n.ID, player.ID, label, delta); err != nil {
				return nil, err
			}
			// Перечитываем: отношение могло кламповаться.
			if updated, err := r.store.GetNPC(n.ID); err == nil && updated != nil {
				n = updated
			}
		}
		reactions = append(reactions, r.ReactionLine(n))
	}

	if len(present) > 0 {
		logger.Log.WithFields(logrus.Fields{
			"component": "npc_registry",
			"location":  locationID,
			"category":  action.Category.String(),
			"npcs":      len(present),
			"delta":     delta,
		}).Debug("NPC reactions collected")
	}

	return reactions, nil
}

// WorkAttendanceCheck: игрок с работой, отсутствующий в рабочее окно,
// получает предупреждение от начальника; отношение босса падает.
// Возвращает пустую строку, если претензий нет.
func (r *Registry) WorkAttendanceCheck(player *domain.Player, bossID string, isWorkHour bool) (string, error) {
	if player.Job.Current == "" || !isWorkHour || player.Job.AtWork {
		return "", nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	boss, err := r.store.GetNPC(bossID)
	if err != nil {
		return "", err
	}
	if boss == nil {
		// Босс может отсутствовать в сид-данных - предупреждение без NPC.
		return fmt.Sprintf("Your manager wonders where you are. You are supposed to be at work as a %s.", player.Job.Current), nil
	}

	boss.AdjustAttitude(-5)
	boss.Remember(player.ID, "skipped a work shift", -5)
	if err := r.store.PutNPC(boss); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is furious: you are supposed to be at work as a %s right now!", boss.Name, player.Job.Current), nil
}
