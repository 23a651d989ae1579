// Package social - взаимодействия игрок-игрок: брак и дуэли.
//
// Ожидающие запросы живут только в памяти: при рестарте сервера они
// пропадают, это осознанное решение (см. DESIGN.md). На диск попадают
// только подтвержденные результаты - записи супругов и урон дуэли.
package social

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"livium-server/internal/domain"
	"livium-server/internal/storage"
	"livium-server/pkg/logger"
)

// requestTTL - время жизни неотвеченного запроса.
const requestTTL = 10 * time.Minute

const (
	duelBaseDamage = 10
	duelRandSpan   = 15
	duelEnergyCost = -20
)

type pending struct {
	from      string
	to        string
	createdAt time.Time
}

// Service держит таблицы ожидающих запросов под одним мьютексом.
type Service struct {
	mu        sync.Mutex
	store     storage.Store
	rng       domain.Rand
	now       func() time.Time
	marriages map[string]pending
	duels     map[string]pending
}

func New(store storage.Store, rng domain.Rand) *Service {
	return NewWithNow(store, rng, time.Now)
}

func NewWithNow(store storage.Store, rng domain.Rand, now func() time.Time) *Service {
	return &Service{
		store:     store,
		rng:       rng,
		now:       now,
		marriages: make(map[string]pending),
		duels:     make(map[string]pending),
	}
}

func key(from, to string) string {
	return from + "_" + to
}

// evictExpired лениво выбрасывает просроченные запросы из таблицы.
func (s *Service) evictExpired(table map[string]pending) {
	cutoff := s.now().Add(-requestTTL)
	for k, p := range table {
		if p.createdAt.Before(cutoff) {
			delete(table, k)
		}
	}
}

// propose: общая логика подачи запроса для обеих таблиц.
func (s *Service) propose(table map[string]pending, from, to *domain.Player) error {
	if from.ID == to.ID {
		return domain.NewValidationError("cannot send a request to yourself")
	}
	s.evictExpired(table)
	if _, ok := table[key(from.ID, to.ID)]; ok {
		return domain.NewPolicyError(domain.ReasonDuplicateRequest, "You already have a pending request to %s.", to.DisplayName())
	}
	table[key(from.ID, to.ID)] = pending{from: from.ID, to: to.ID, createdAt: s.now()}
	return nil
}

// take изымает запрос from→to; nil, если его нет или он истек.
func (s *Service) take(table map[string]pending, from, to string) *pending {
	s.evictExpired(table)
	p, ok := table[key(from, to)]
	if !ok {
		return nil
	}
	delete(table, key(from, to))
	return &p
}

// --- БРАК ---

// ProposeMarriage регистрирует предложение руки и сердца.
func (s *Service) ProposeMarriage(from, to *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from.Family.Spouse != "" {
		return domain.NewPolicyError(domain.ReasonNotEligible, "You are already married.")
	}
	if to.Family.Spouse != "" {
		return domain.NewPolicyError(domain.ReasonNotEligible, "%s is already married.", to.DisplayName())
	}
	return s.propose(s.marriages, from, to)
}

// AcceptMarriage: принявший (to) должен быть в одном городе с предложившим.
// Обе записи игроков персистятся до возврата.
func (s *Service) AcceptMarriage(from, to *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.take(s.marriages, from.ID, to.ID) == nil {
		return domain.NewPolicyError(domain.ReasonNoPendingRequest, "There is no marriage proposal from %s.", from.DisplayName())
	}
	if from.Position.Location != to.Position.Location {
		// Запрос уже изъят - повторное предложение возможно сразу.
		return domain.NewPolicyError(domain.ReasonDifferentCity, "You must be in the same city to get married.")
	}

	now := s.now().UnixMilli()
	from.Family.Spouse = to.ID
	from.Family.SpouseName = to.DisplayName()
	from.Family.MarriedAt = now
	to.Family.Spouse = from.ID
	to.Family.SpouseName = from.DisplayName()
	to.Family.MarriedAt = now

	if err := s.store.PutPlayer(from); err != nil {
		return err
	}
	if err := s.store.PutPlayer(to); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "social",
		"from":      from.ID,
		"to":        to.ID,
	}).Info("Marriage registered")
	return nil
}

// RefuseMarriage снимает предложение.
func (s *Service) RefuseMarriage(fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.take(s.marriages, fromID, toID) == nil {
		return domain.NewPolicyError(domain.ReasonNoPendingRequest, "There is no marriage proposal to refuse.")
	}
	return nil
}

// --- ДУЭЛИ ---

// DuelResult - исход дуэли. Damage* - урон, НАНЕСЕННЫЙ стороной.
type DuelResult struct {
	Challenger       *domain.Player
	Challenged       *domain.Player
	ChallengerDamage int
	ChallengedDamage int
	Winner           *domain.Player
	Loser            *domain.Player
}

// Summary - готовый текст исхода для обоих участников.
func (r *DuelResult) Summary() string {
	return fmt.Sprintf("Duel: %s dealt %d damage, %s dealt %d damage. %s wins!",
		r.Challenger.DisplayName(), r.ChallengerDamage,
		r.Challenged.DisplayName(), r.ChallengedDamage,
		r.Winner.DisplayName())
}

// ChallengeDuel регистрирует вызов.
func (s *Service) ChallengeDuel(from, to *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propose(s.duels, from, to)
}

// AcceptDuel проводит дуэль: урон = 10 + combat/5 + rand[0,15),
// каждый получает урон противника и теряет 20 энергии. Побеждает
// больший урон; при равенстве побеждает принявший вызов.
func (s *Service) AcceptDuel(challenger, challenged *domain.Player) (*DuelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.take(s.duels, challenger.ID, challenged.ID) == nil {
		return nil, domain.NewPolicyError(domain.ReasonNoPendingRequest, "There is no duel challenge from %s.", challenger.DisplayName())
	}
	if challenger.Position.Location != challenged.Position.Location {
		return nil, domain.NewPolicyError(domain.ReasonDifferentCity, "You must be in the same city to duel.")
	}

	res := &DuelResult{
		Challenger:       challenger,
		Challenged:       challenged,
		ChallengerDamage: s.duelDamage(challenger),
		ChallengedDamage: s.duelDamage(challenged),
	}
	if res.ChallengerDamage > res.ChallengedDamage {
		res.Winner, res.Loser = challenger, challenged
	} else {
		res.Winner, res.Loser = challenged, challenger
	}

	challenger.ApplyStats(domain.StatDelta{Health: -res.ChallengedDamage, Energy: duelEnergyCost})
	challenged.ApplyStats(domain.StatDelta{Health: -res.ChallengerDamage, Energy: duelEnergyCost})

	if err := s.store.PutPlayer(challenger); err != nil {
		return nil, err
	}
	if err := s.store.PutPlayer(challenged); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "social",
		"winner":    res.Winner.ID,
		"loser":     res.Loser.ID,
	}).Info("Duel resolved")
	return res, nil
}

// RefuseDuel снимает вызов.
func (s *Service) RefuseDuel(fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.take(s.duels, fromID, toID) == nil {
		return domain.NewPolicyError(domain.ReasonNoPendingRequest, "There is no duel challenge to refuse.")
	}
	return nil
}

func (s *Service) duelDamage(p *domain.Player) int {
	return duelBaseDamage + p.Skills["combat"]/5 + s.rng.Intn(duelRandSpan)
}
