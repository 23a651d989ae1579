// Package movement - перемещение по районам города и между городами.
// Расчет чистый: функции возвращают результат с дельтами, мутирует
// игрока оркестратор.
package movement

import (
	"fmt"
	"math"
	"strings"

	"livium-server/internal/config"
	"livium-server/internal/domain"
)

const (
	metersPerCell = 500
	// Скорости в метрах в минуту: ~5 км/ч пешком, ~50 км/ч на транспорте.
	walkSpeed    = 83
	vehicleSpeed = 833

	// Авария при езде без прав: шанс и штрафы.
	accidentChance    = 0.30
	accidentHealth    = -30
	accidentCash      = -500
	accidentTimeCost  = 120 // фиксированные 2 игровых часа

	energyCostWalk    = -15
	energyCostVehicle = -5

	// Межгород: условный перелет ~500 км/ч.
	kmPerCityStep  = 500
	travelKmPerMin = 8
	travelEnergy   = -10
)

// Result - исход перемещения по районам.
type Result struct {
	OK       bool
	Accident bool

	// Позиция назначения (валидна только при OK).
	District string
	NewX     int
	NewY     int

	DistanceMeters int
	TravelMinutes  int

	// Дельты для оркестратора.
	Energy int
	Health int
	Cash   int
	// TimeCost - игровые минуты, которые съедает перемещение.
	TimeCost int

	Summary string
}

// Service держит карты районов и порядок городов для межгородских расстояний.
type Service struct {
	cities      map[string]config.CityMap
	travelOrder []string
	rng         domain.Rand
}

func New(data *config.GameData, rng domain.Rand) *Service {
	return &Service{
		cities:      data.Cities,
		travelOrder: data.TravelOrder,
		rng:         rng,
	}
}

// District возвращает район города, nil если не найден.
func (s *Service) District(city, key string) *config.District {
	cm, ok := s.cities[city]
	if !ok {
		return nil
	}
	d, ok := cm.Districts[key]
	if !ok {
		return nil
	}
	return &d
}

// Move рассчитывает перемещение игрока в район его текущего города.
// Неизвестный район - ValidationError, состояние не меняется.
// Езда без прав - 30% шанс аварии: это карательная ветка исхода,
// а НЕ ошибка валидации.
func (s *Service) Move(p *domain.Player, targetDistrict string, hasVehicle, hasLicense bool) (Result, error) {
	city := p.Position.Location
	district := s.District(city, targetDistrict)
	if district == nil {
		return Result{}, domain.NewValidationError("unknown district %q in %s", targetDistrict, city)
	}

	distance := cellDistance(p.Position.X, p.Position.Y, district.X, district.Y)

	if hasVehicle && !hasLicense && s.rng.Float64() < accidentChance {
		return Result{
			OK:             false,
			Accident:       true,
			DistanceMeters: distance / 2,
			Health:         accidentHealth,
			Cash:           accidentCash,
			TimeCost:       accidentTimeCost,
			Summary: fmt.Sprintf(
				"CRASH! Driving without a license you lose control of the vehicle. "+
					"Covered %dm. Health %d, $%d in damages, 2 hours lost.",
				distance/2, accidentHealth, accidentCash),
		}, nil
	}

	speed := walkSpeed
	energy := energyCostWalk
	if hasVehicle {
		speed = vehicleSpeed
		energy = energyCostVehicle
	}
	minutes := distance / speed

	return Result{
		OK:             true,
		District:       district.Name,
		NewX:           district.X,
		NewY:           district.Y,
		DistanceMeters: distance,
		TravelMinutes:  minutes,
		Energy:         energy,
		TimeCost:       minutes,
		Summary: fmt.Sprintf("You arrive at %s. Distance: %dm, travel time: %dmin.\n\n%s",
			district.Name, distance, minutes, s.Surroundings(city, district.X, district.Y)),
	}, nil
}

func cellDistance(fromX, fromY, toX, toY int) int {
	dx := float64(toX - fromX)
	dy := float64(toY - fromY)
	return int(math.Sqrt(dx*dx+dy*dy) * metersPerCell)
}

// Surroundings описывает четырех соседей по сторонам света.
// Районы с danger > 50 помечаются.
func (s *Service) Surroundings(city string, x, y int) string {
	cm, ok := s.cities[city]
	if !ok {
		return "You are somewhere off the map."
	}

	dirs := []struct {
		dx, dy int
		name   string
	}{
		{0, 1, "North"},
		{1, 0, "East"},
		{0, -1, "South"},
		{-1, 0, "West"},
	}

	var b strings.Builder
	b.WriteString("AROUND YOU\n")
	for _, dir := range dirs {
		var found *config.District
		for _, d := range cm.Districts {
			if d.X == x+dir.dx && d.Y == y+dir.dy {
				d := d
				found = &d
				break
			}
		}
		if found == nil {
			fmt.Fprintf(&b, "%s: nothing notable\n", dir.name)
			continue
		}
		marker := ""
		if found.Danger > 50 {
			marker = " (dangerous)"
		}
		fmt.Fprintf(&b, "%s (%dm): %s%s\n", dir.name, metersPerCell, found.Name, marker)
	}
	return b.String()
}

// TravelResult - исход межгородского переезда.
type TravelResult struct {
	City       string
	DistanceKm int
	TimeCost   int // игровые минуты
	Energy     int
}

// Travel рассчитывает переезд в другой город. Расстояние - разница
// индексов в фиксированном порядке городов, по 500 км за шаг.
func (s *Service) Travel(p *domain.Player, targetCity string) (TravelResult, error) {
	if targetCity == p.Position.Location {
		return TravelResult{}, domain.NewValidationError("already in %s", targetCity)
	}

	from := indexOf(s.travelOrder, p.Position.Location)
	to := indexOf(s.travelOrder, targetCity)
	if to == -1 {
		return TravelResult{}, domain.NewValidationError("unknown city %q", targetCity)
	}

	steps := to - from
	if steps < 0 {
		steps = -steps
	}
	km := steps * kmPerCityStep

	return TravelResult{
		City:       targetCity,
		DistanceKm: km,
		TimeCost:   km / travelKmPerMin,
		Energy:     travelEnergy,
	}, nil
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
