package domain

import "time"

// --- КОМПОНЕНТЫ ИГРОКА ---

// Stats - жизненные показатели. Все поля, кроме CreditScore,
// всегда удерживаются в диапазоне [0,100] (см. Apply).
type Stats struct {
	Health      int `json:"health"`
	Energy      int `json:"energy"`
	Hunger      int `json:"hunger"`
	Mental      int `json:"mental"`
	Wanted      int `json:"wanted"`
	CreditScore int `json:"creditScore"` // Свой диапазон: [300,850]
}

// StatDelta - аддитивное изменение показателей.
// Значения могут быть любого знака и величины, клампинг - на стороне игрока.
type StatDelta struct {
	Health int `json:"health,omitempty"`
	Energy int `json:"energy,omitempty"`
	Hunger int `json:"hunger,omitempty"`
	Mental int `json:"mental,omitempty"`
	Wanted int `json:"wanted,omitempty"`
}

// IsZero сообщает, что дельта ничего не меняет.
func (d StatDelta) IsZero() bool {
	return d == StatDelta{}
}

// Add складывает две дельты покомпонентно.
func (d StatDelta) Add(o StatDelta) StatDelta {
	return StatDelta{
		Health: d.Health + o.Health,
		Energy: d.Energy + o.Energy,
		Hunger: d.Hunger + o.Hunger,
		Mental: d.Mental + o.Mental,
		Wanted: d.Wanted + o.Wanted,
	}
}

// Position - город и локальная координата внутри него (сетка районов).
type Position struct {
	Location string `json:"location"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// Item - предмет инвентаря.
type Item struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Quantity int    `json:"quantity"`
}

// OwnedVehicle - купленный транспорт.
type OwnedVehicle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Fuel        int    `json:"fuel"`
	Condition   int    `json:"condition"`
	PurchasedAt int64  `json:"purchasedAt"`
}

// Loan - выданный банком кредит.
type Loan struct {
	BankID       string  `json:"bankId"`
	Amount       int     `json:"amount"`
	InterestRate float64 `json:"interestRate"`
	IssuedAt     int64   `json:"issuedAt"`
}

// Inventory - деньги и имущество.
type Inventory struct {
	Money    int            `json:"money"`
	Bank     int            `json:"bankAccount"`
	Items    []Item         `json:"items"`
	Vehicles []OwnedVehicle `json:"vehicles"`
	Loans    []Loan         `json:"loans,omitempty"`
}

// Job - текущее место работы и накопленный стаж.
type Job struct {
	// Current - название должности. Пустая строка = безработный.
	Current string `json:"current"`
	// Experience - часы стажа по каждой должности, на которой игрок работал.
	// Инвариант: если Current != "", ключ Current присутствует.
	Experience    map[string]int `json:"experience"`
	Salary        int            `json:"salary"`
	WorkHours     int            `json:"workHours"`
	AtWork        bool           `json:"atWork"`
	LastWorkCheck int64          `json:"lastWorkCheck,omitempty"`
}

// Licenses - полученные разрешения.
type Licenses struct {
	Driving  bool `json:"driving"`
	Gun      bool `json:"gun"`
	Business bool `json:"business"`
}

// Child - ребенок игрока. Age - производное поле (пересчитывается от BornAt).
type Child struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Gender  string `json:"gender"`
	BornAt  int64  `json:"bornAt"`
	AgeDays int    `json:"age"`
}

// Family - беременность, супруг(а) и дети.
type Family struct {
	Pregnant       bool    `json:"pregnant"`
	PregnancyStart int64   `json:"pregnancyStart,omitempty"`
	Spouse         string  `json:"spouse,omitempty"`
	SpouseName     string  `json:"spouseName,omitempty"`
	MarriedAt      int64   `json:"marriageDate,omitempty"`
	Children       []Child `json:"children"`
}

// HistoryEntry - запись журнала действий (хранятся последние 50).
type HistoryEntry struct {
	Timestamp int64     `json:"timestamp"`
	Action    string    `json:"action"`
	Delta     StatDelta `json:"delta"`
	Events    []string  `json:"events,omitempty"`
}

// --- ИГРОК ---

// Player - корневая запись игрока. Все мутации проходят через методы
// или через операции подсистем; прямой записи полей извне быть не должно.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Данные создания персонажа
	CustomName       string `json:"customName,omitempty"`
	Age              int    `json:"age,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Background       string `json:"background,omitempty"`
	CharacterCreated bool   `json:"characterCreated"`
	// CreationStage - текущий шаг диалога создания (см. creation.go).
	// Пустая строка после завершения.
	CreationStage CreationStage `json:"creationStage,omitempty"`

	Stats     Stats          `json:"stats"`
	Position  Position       `json:"position"`
	Inventory Inventory      `json:"inventory"`
	Job       Job            `json:"job"`
	Licenses  Licenses       `json:"licenses"`
	Skills    map[string]int `json:"skills"`
	Family    Family         `json:"family"`
	History   []HistoryEntry `json:"history"`

	CreatedAt  int64 `json:"createdAt"`
	LastActive int64 `json:"lastActive"`
}

const (
	maxHistory   = 50
	maxSkill     = 100
	minCredit    = 300
	maxCredit    = 850
	startCity    = "paris"
	startMoney   = 500
	startCredit  = 500
	maxStatValue = 100
)

// NewPlayer создает игрока со стартовыми значениями.
// Персонаж еще не создан: первый диалог пройдет через машину состояний создания.
func NewPlayer(id, name string) *Player {
	now := time.Now().UnixMilli()
	p := &Player{
		ID:            id,
		Name:          name,
		CreationStage: StageName,
		Stats: Stats{
			Health:      100,
			Energy:      100,
			Hunger:      100,
			Mental:      100,
			Wanted:      0,
			CreditScore: startCredit,
		},
		Position: Position{Location: startCity},
		Inventory: Inventory{
			Money:    startMoney,
			Items:    []Item{},
			Vehicles: []OwnedVehicle{},
		},
		Job: Job{Experience: map[string]int{}},
		Skills: map[string]int{
			"driving":     0,
			"negotiation": 0,
			"combat":      0,
			"stealth":     0,
			"cooking":     0,
			"repair":      0,
		},
		Family:     Family{Children: []Child{}},
		History:    []HistoryEntry{},
		CreatedAt:  now,
		LastActive: now,
	}
	return p
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxStatValue {
		return maxStatValue
	}
	return v
}

// ApplyStats прибавляет дельту и удерживает показатели в [0,100].
// Клампинг живет здесь, а не в движке последствий: любая мутация
// статов обязана пройти через этот метод.
func (p *Player) ApplyStats(d StatDelta) {
	p.Stats.Health = clampStat(p.Stats.Health + d.Health)
	p.Stats.Energy = clampStat(p.Stats.Energy + d.Energy)
	p.Stats.Hunger = clampStat(p.Stats.Hunger + d.Hunger)
	p.Stats.Mental = clampStat(p.Stats.Mental + d.Mental)
	p.Stats.Wanted = clampStat(p.Stats.Wanted + d.Wanted)
}

// AdjustCredit меняет кредитный рейтинг в его собственном диапазоне.
func (p *Player) AdjustCredit(delta int) {
	v := p.Stats.CreditScore + delta
	if v < minCredit {
		v = minCredit
	}
	if v > maxCredit {
		v = maxCredit
	}
	p.Stats.CreditScore = v
}

// IsAlive: смерть наступает строго при health == 0.
func (p *Player) IsAlive() bool {
	return p.Stats.Health > 0
}

// DisplayName - имя для сообщений: выбранное при создании или имя транспорта.
func (p *Player) DisplayName() string {
	if p.CustomName != "" {
		return p.CustomName
	}
	return p.Name
}

// AddMoney меняет наличные. Проверки на отрицательный баланс делают
// операции экономики ДО вызова.
func (p *Player) AddMoney(amount int) {
	p.Inventory.Money += amount
}

// AddItem кладет предмет в инвентарь, складывая одинаковые по имени.
func (p *Player) AddItem(name, itemType string, quantity int) {
	for i := range p.Inventory.Items {
		if p.Inventory.Items[i].Name == name {
			p.Inventory.Items[i].Quantity += quantity
			return
		}
	}
	p.Inventory.Items = append(p.Inventory.Items, Item{Name: name, Type: itemType, Quantity: quantity})
}

// HasLicense проверяет лицензию по строковому id каталога.
func (p *Player) HasLicense(id string) bool {
	switch id {
	case "driving":
		return p.Licenses.Driving
	case "gun":
		return p.Licenses.Gun
	case "business":
		return p.Licenses.Business
	}
	return false
}

// GrantLicense выставляет флаг лицензии по id каталога.
func (p *Player) GrantLicense(id string) {
	switch id {
	case "driving":
		p.Licenses.Driving = true
	case "gun":
		p.Licenses.Gun = true
	case "business":
		p.Licenses.Business = true
	}
}

// AddSkillXP повышает навык с потолком 100.
func (p *Player) AddSkillXP(skill string, amount int) {
	if p.Skills == nil {
		p.Skills = map[string]int{}
	}
	v := p.Skills[skill] + amount
	if v > maxSkill {
		v = maxSkill
	}
	p.Skills[skill] = v
}

// SetJob назначает должность и заводит запись стажа (инвариант Job.Experience).
func (p *Player) SetJob(title string, salary int) {
	p.Job.Current = title
	p.Job.Salary = salary
	p.Job.WorkHours = 0
	if p.Job.Experience == nil {
		p.Job.Experience = map[string]int{}
	}
	if _, ok := p.Job.Experience[title]; !ok {
		p.Job.Experience[title] = 0
	}
}

// AddWorkHours засчитывает отработанные часы и возвращает заработок
// (недельная ставка /40 за час). Без работы - ноль.
func (p *Player) AddWorkHours(hours int) int {
	if p.Job.Current == "" {
		return 0
	}
	p.Job.WorkHours += hours
	p.Job.Experience[p.Job.Current] += hours
	earnings := p.Job.Salary / 40 * hours
	p.AddMoney(earnings)
	return earnings
}

// AddHistory пишет запись журнала, вытесняя самую старую при переполнении.
func (p *Player) AddHistory(action string, delta StatDelta, events []string) {
	p.History = append(p.History, HistoryEntry{
		Timestamp: time.Now().UnixMilli(),
		Action:    action,
		Delta:     delta,
		Events:    events,
	})
	if len(p.History) > maxHistory {
		p.History = p.History[len(p.History)-maxHistory:]
	}
}

// Touch обновляет отметку последней активности.
func (p *Player) Touch() {
	p.LastActive = time.Now().UnixMilli()
}

// Reset возвращает мертвого игрока к жизни: статы, позиция, работа,
// имущество и журнал сбрасываются к стартовым. Личность (имя, возраст,
// биография) и семья сохраняются - это решение политики, см. DESIGN.md.
func (p *Player) Reset() {
	fresh := NewPlayer(p.ID, p.Name)
	p.Stats = fresh.Stats
	p.Position = fresh.Position
	p.Inventory = fresh.Inventory
	p.Job = fresh.Job
	p.Licenses = Licenses{}
	p.Skills = fresh.Skills
	p.History = []HistoryEntry{}
	p.Touch()
}
