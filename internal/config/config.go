// Package config загружает неизменяемые игровые каталоги из встроенных
// YAML-файлов. Раньше (в референсе) эти таблицы были глобальными
// мутабельными объектами; здесь они читаются один раз на старте и дальше
// передаются подсистемам как параметры конструкторов.
package config

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"livium-server/internal/domain"
)

//go:embed data/*.yaml
var dataFS embed.FS

// District - район города на целочисленной сетке.
type District struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Danger int    `yaml:"danger"`
}

// CityMap - граф районов одного города.
type CityMap struct {
	Districts map[string]District `yaml:"districts"`
}

// JobSpec - вакансия из каталога.
type JobSpec struct {
	Name           string         `yaml:"name"`
	Salary         int            `yaml:"salary"`
	RequiresDriving bool          `yaml:"requires_driving"`
	RequiredSkills map[string]int `yaml:"required_skills"`
	SkillGains     map[string]int `yaml:"skill_gains"`
	Illegal        bool           `yaml:"illegal"`
	Boss           string         `yaml:"boss"`
}

// VehicleSpec - транспорт из каталога.
type VehicleSpec struct {
	Name            string `yaml:"name"`
	Price           int    `yaml:"price"`
	Speed           int    `yaml:"speed"`
	FuelConsumption int    `yaml:"fuel_consumption"`
	RequiresLicense bool   `yaml:"requires_license"`
}

// LicenseSpec - лицензия и ее предусловия.
type LicenseSpec struct {
	Name      string `yaml:"name"`
	Cost      int    `yaml:"cost"`
	MinAge    int    `yaml:"min_age"`
	MaxWanted int    `yaml:"max_wanted"`
	MinMoney  int    `yaml:"min_money"`
}

// ShopItem - товар на полке.
type ShopItem struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price int    `yaml:"price"`
	Type  string `yaml:"type"`
}

// Shop - магазин, привязанный к городу.
type Shop struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"`
	Location  string     `yaml:"location"`
	Inventory []ShopItem `yaml:"inventory"`
}

// LoanTerms - кредитные условия банка.
type LoanTerms struct {
	MaxAmount           int     `yaml:"max_amount"`
	InterestRate        float64 `yaml:"interest_rate"`
	RequiredCreditScore int     `yaml:"required_credit_score"`
}

// Bank - банк, привязанный к городу.
type Bank struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Location string    `yaml:"location"`
	Loan     LoanTerms `yaml:"loan"`
}

// NPCSeed - начальное состояние NPC при бутстрапе мира.
type NPCSeed struct {
	Name        string `yaml:"name"`
	Location    string `yaml:"location"`
	Personality string `yaml:"personality"`
	Attitude    int    `yaml:"attitude"`
}

// GameData - все статические каталоги. После Load не мутируется.
type GameData struct {
	Locations   map[string]domain.Location
	TravelOrder []string
	Cities      map[string]CityMap
	Jobs        map[string]JobSpec
	Vehicles    map[string]VehicleSpec
	Licenses    map[string]LicenseSpec
	Shops       []Shop
	Banks       []Bank
	NPCSeeds    map[string]NPCSeed
}

type locationsFile struct {
	Locations   map[string]domain.Location `yaml:"locations"`
	TravelOrder []string                   `yaml:"travel_order"`
}

type citiesFile struct {
	Cities map[string]CityMap `yaml:"cities"`
}

type economyFile struct {
	Jobs     map[string]JobSpec     `yaml:"jobs"`
	Vehicles map[string]VehicleSpec `yaml:"vehicles"`
	Licenses map[string]LicenseSpec `yaml:"licenses"`
}

type shopsFile struct {
	Shops []Shop `yaml:"shops"`
	Banks []Bank `yaml:"banks"`
}

type npcsFile struct {
	NPCs map[string]NPCSeed `yaml:"npcs"`
}

func parse(name string, out any) error {
	raw, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Load читает и валидирует все встроенные каталоги.
func Load() (*GameData, error) {
	var locs locationsFile
	var cities citiesFile
	var econ economyFile
	var shops shopsFile
	var npcs npcsFile

	if err := parse("locations.yaml", &locs); err != nil {
		return nil, err
	}
	if err := parse("cities.yaml", &cities); err != nil {
		return nil, err
	}
	if err := parse("economy.yaml", &econ); err != nil {
		return nil, err
	}
	if err := parse("shops.yaml", &shops); err != nil {
		return nil, err
	}
	if err := parse("npcs.yaml", &npcs); err != nil {
		return nil, err
	}

	// Проставляем id внутрь записей локаций (ключ карты - канонический id).
	for id, loc := range locs.Locations {
		loc.ID = id
		locs.Locations[id] = loc
	}

	data := &GameData{
		Locations:   locs.Locations,
		TravelOrder: locs.TravelOrder,
		Cities:      cities.Cities,
		Jobs:        econ.Jobs,
		Vehicles:    econ.Vehicles,
		Licenses:    econ.Licenses,
		Shops:       shops.Shops,
		Banks:       shops.Banks,
		NPCSeeds:    npcs.NPCs,
	}
	return data, data.validate()
}

// validate ловит рассинхронизацию между файлами (ссылки на чужие id).
func (d *GameData) validate() error {
	if len(d.Locations) == 0 {
		return fmt.Errorf("no locations defined")
	}
	for _, id := range d.TravelOrder {
		if _, ok := d.Locations[id]; !ok {
			return fmt.Errorf("travel_order references unknown location %q", id)
		}
	}
	for city := range d.Cities {
		if _, ok := d.Locations[city]; !ok {
			return fmt.Errorf("city map references unknown location %q", city)
		}
	}
	for _, s := range d.Shops {
		if _, ok := d.Locations[s.Location]; !ok {
			return fmt.Errorf("shop %q references unknown location %q", s.ID, s.Location)
		}
	}
	for _, b := range d.Banks {
		if _, ok := d.Locations[b.Location]; !ok {
			return fmt.Errorf("bank %q references unknown location %q", b.ID, b.Location)
		}
	}
	for id, n := range d.NPCSeeds {
		if _, ok := d.Locations[n.Location]; !ok {
			return fmt.Errorf("npc %q references unknown location %q", id, n.Location)
		}
	}
	return nil
}

// ShopByID ищет магазин по id во всех городах.
func (d *GameData) ShopByID(id string) *Shop {
	for i := range d.Shops {
		if d.Shops[i].ID == id {
			return &d.Shops[i]
		}
	}
	return nil
}

// BankByID ищет банк по id.
func (d *GameData) BankByID(id string) *Bank {
	for i := range d.Banks {
		if d.Banks[i].ID == id {
			return &d.Banks[i]
		}
	}
	return nil
}

// ShopsIn возвращает магазины города.
func (d *GameData) ShopsIn(location string) []Shop {
	var out []Shop
	for _, s := range d.Shops {
		if s.Location == location {
			out = append(out, s)
		}
	}
	return out
}

// BanksIn возвращает банки города.
func (d *GameData) BanksIn(location string) []Bank {
	var out []Bank
	for _, b := range d.Banks {
		if b.Location == location {
			out = append(out, b)
		}
	}
	return out
}
