package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"livium-server/internal/clock"
	"livium-server/internal/domain"
	"livium-server/pkg/api"
	"livium-server/pkg/logger"
)

// workWindowID нумерует рабочие окна сквозно по игровым дням:
// у каждого дня два окна - дневное [8,13] и вечернее (с 19).
func workWindowID(ts domain.TimeState) int64 {
	id := int64(ts.CurrentDay) * 2
	if ts.CurrentHour >= 19 {
		id++
	}
	return id
}

// tickInterval - период фонового тика мировых часов. Сообщения двигают
// время и сами (advanceWorld), тик нужен пустому серверу.
const tickInterval = time.Minute

// bootstrap поднимает мир из хранилища или создает его с нуля:
// время, каталог локаций, сид NPC.
func (s *GameService) bootstrap() error {
	world, err := s.store.GetWorld()
	if err != nil {
		return err
	}
	if world == nil {
		world = &domain.World{
			Time:      domain.TimeState{StartTime: s.now().UnixMilli(), CurrentDay: 1},
			Locations: s.data.Locations,
		}
		logger.Log.WithField("component", "engine").Info("Fresh world created")
	} else {
		// Каталог локаций всегда берется из конфига: правки каталога
		// не должны требовать миграции сохраненного мира.
		world.Locations = s.data.Locations
	}
	s.clock.Advance(&world.Time)
	s.world = world
	if err := s.store.PutWorld(world); err != nil {
		return err
	}
	return s.seedNPCs()
}

// seedNPCs создает NPC из сид-данных, не трогая уже существующих:
// их отношение и память - накопленное состояние мира.
func (s *GameService) seedNPCs() error {
	for id, seed := range s.data.NPCSeeds {
		existing, err := s.store.GetNPC(id)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.store.PutNPC(&domain.NPC{
			ID:          id,
			Name:        seed.Name,
			Location:    seed.Location,
			Personality: seed.Personality,
			Attitude:    seed.Attitude,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Run крутит фоновый тик часов до отмены контекста. Тики не
// накладываются: каждый завершается до следующего.
func (s *GameService) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	logger.Log.WithFields(logrus.Fields{
		"component": "engine",
		"interval":  tickInterval.String(),
	}).Info("World clock loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Log.WithField("component", "engine").Info("World clock loop stopped")
			return
		case <-ticker.C:
			s.advanceWorld()
			s.tickPlayers()
		}
	}
}

// tickPlayers - фоновые проверки по всем игрокам: беременность, дети,
// прогулы. Ошибки логируются и не останавливают тик.
func (s *GameService) tickPlayers() {
	players, err := s.store.Players()
	if err != nil {
		logger.Log.WithField("error", err.Error()).Error("Player tick: listing failed")
		return
	}
	ts := s.timeSnapshot()

	for _, p := range players {
		unlock := s.lockPlayer(p.ID)
		// Перечитываем под локом: список мог устареть.
		fresh, err := s.store.GetPlayer(p.ID)
		if err != nil || fresh == nil {
			unlock()
			continue
		}
		// Новость о родах игрок увидит в следующем ответе (снимок семьи).
		changed := false
		if s.family.CheckPregnancy(fresh) != "" {
			changed = true
		}
		if s.family.UpdateChildren(fresh) {
			changed = true
		}
		// Не чаще одного раза за рабочее окно (утреннее/вечернее):
		// тикер ходит каждую минуту, а выговор за прогул - один.
		if window := workWindowID(ts); fresh.Job.Current != "" &&
			clock.IsWorkHour(ts.CurrentHour) && fresh.Job.LastWorkCheck != window {
			boss := s.economy.BossFor(fresh.Job.Current)
			warning, err := s.npcs.WorkAttendanceCheck(fresh, boss, true)
			switch {
			case err != nil:
				logger.Log.WithField("error", err.Error()).Warn("Attendance check failed")
			case warning != "":
				fresh.Job.LastWorkCheck = window
				changed = true
				if s.notify != nil {
					s.notify(api.OutboundMessage{RecipientID: fresh.ID, Text: warning})
				}
			}
		}
		if changed {
			if err := s.store.PutPlayer(fresh); err != nil {
				logger.Log.WithField("error", err.Error()).Error("Player tick: persist failed")
			}
		}
		unlock()
	}
}
