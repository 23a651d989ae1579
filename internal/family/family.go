// Package family - беременность, роды и взросление детей.
//
// Срок беременности считается в реальном времени: 9 реальных часов
// соответствуют 9 игровым дням при курсе времени 1 час = 1 день.
package family

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"livium-server/internal/domain"
	"livium-server/pkg/logger"
)

// gestationWall - реальная длительность беременности.
const gestationWall = 9 * time.Hour

// childAgeWallHour - один реальный час взросления = один игровой день.
const childAgeWallHour = time.Hour

// Service инкапсулирует время и источник случайности, чтобы тесты могли
// подменять и то и другое.
type Service struct {
	now func() time.Time
	rng domain.Rand
}

func New(rng domain.Rand) *Service {
	return &Service{now: time.Now, rng: rng}
}

// NewWithNow - для тестов с фиксированными часами.
func NewWithNow(now func() time.Time, rng domain.Rand) *Service {
	return &Service{now: now, rng: rng}
}

// CanStartPregnancy проверяет право завести ребенка. Проверки идут в
// фиксированном порядке, чтобы код причины был стабильным.
func CanStartPregnancy(p *domain.Player) error {
	if p.Gender != "female" {
		return domain.NewPolicyError(domain.ReasonNotEligible, "Only female characters can become pregnant.")
	}
	if p.Age < 18 || p.Age > 45 {
		return domain.NewPolicyError(domain.ReasonNotEligible, "Pregnancy is only possible between ages 18 and 45.")
	}
	if p.Family.Pregnant {
		return domain.NewPolicyError(domain.ReasonAlreadyPregnant, "You are already expecting a child.")
	}
	return nil
}

// StartPregnancy ставит флаг и отметку начала срока.
func (s *Service) StartPregnancy(p *domain.Player) error {
	if err := CanStartPregnancy(p); err != nil {
		return err
	}
	p.Family.Pregnant = true
	p.Family.PregnancyStart = s.now().UnixMilli()

	logger.Log.WithFields(logrus.Fields{
		"component": "family",
		"player":    p.ID,
	}).Info("Pregnancy started")
	return nil
}

// CheckPregnancy: до срока возвращает сообщение об оставшихся днях,
// по достижении срока - рожает. Пустая строка = нечего сообщать.
func (s *Service) CheckPregnancy(p *domain.Player) string {
	if !p.Family.Pregnant {
		return ""
	}
	elapsed := time.Duration(s.now().UnixMilli()-p.Family.PregnancyStart) * time.Millisecond
	if elapsed < gestationWall {
		daysLeft := int((gestationWall-elapsed)/childAgeWallHour) + 1
		if daysLeft > 9 {
			daysLeft = 9
		}
		return fmt.Sprintf("Your pregnancy continues. About %d day(s) until the birth.", daysLeft)
	}
	child := s.GiveBirth(p)
	return fmt.Sprintf("You gave birth to a healthy baby %s! Use /namechild <name> to name your child.", child.Gender)
}

// GiveBirth добавляет безымянного ребенка и снимает флаг беременности.
func (s *Service) GiveBirth(p *domain.Player) domain.Child {
	gender := "girl"
	if s.rng.Intn(2) == 0 {
		gender = "boy"
	}
	child := domain.Child{
		ID:     uuid.NewString(),
		Gender: gender,
		BornAt: s.now().UnixMilli(),
	}
	p.Family.Children = append(p.Family.Children, child)
	p.Family.Pregnant = false
	p.Family.PregnancyStart = 0

	logger.Log.WithFields(logrus.Fields{
		"component": "family",
		"player":    p.ID,
		"child":     child.ID,
		"gender":    gender,
	}).Info("Child born")
	return child
}

// NameChild дает имя первому безымянному ребенку.
func NameChild(p *domain.Player, name string) (*domain.Child, error) {
	if name == "" {
		return nil, domain.NewValidationError("child name must not be empty")
	}
	for i := range p.Family.Children {
		if p.Family.Children[i].Name == "" {
			p.Family.Children[i].Name = name
			return &p.Family.Children[i], nil
		}
	}
	return nil, domain.NewPolicyError(domain.ReasonNoUnnamedChild, "All your children already have names.")
}

// UpdateChildren пересчитывает возраст детей: один реальный час = игровой день.
func (s *Service) UpdateChildren(p *domain.Player) bool {
	changed := false
	nowMs := s.now().UnixMilli()
	for i := range p.Family.Children {
		c := &p.Family.Children[i]
		age := int(time.Duration(nowMs-c.BornAt) * time.Millisecond / childAgeWallHour)
		if age != c.AgeDays {
			c.AgeDays = age
			changed = true
		}
	}
	return changed
}
