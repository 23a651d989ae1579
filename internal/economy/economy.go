// Package economy - работы, лицензии, транспорт, магазины и банки.
// Каждая операция - атомарная проверка-потом-мутация: любой отказ
// оставляет игрока нетронутым.
package economy

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"livium-server/internal/config"
	"livium-server/internal/domain"
)

type Service struct {
	data *config.GameData
}

func New(data *config.GameData) *Service {
	return &Service{data: data}
}

// --- РАБОТА ---

// CanApplyForJob проверяет предусловия вакансии.
// Возвращает PolicyError с конкретной неудовлетворенной причиной.
func (s *Service) CanApplyForJob(p *domain.Player, jobID string) error {
	job, ok := s.data.Jobs[jobID]
	if !ok {
		return domain.NewValidationError("unknown job %q", jobID)
	}
	if job.RequiresDriving && !p.Licenses.Driving {
		return domain.NewPolicyError(domain.ReasonNoLicense, "the %s job requires a driving license", job.Name)
	}

	// Навыки проверяем в стабильном порядке, чтобы причина отказа
	// не скакала между вызовами.
	skills := make([]string, 0, len(job.RequiredSkills))
	for skill := range job.RequiredSkills {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	for _, skill := range skills {
		if p.Skills[skill] < job.RequiredSkills[skill] {
			return domain.NewPolicyError(domain.ReasonMissingSkill,
				"requires %s level %d (you have %d)", skill, job.RequiredSkills[skill], p.Skills[skill])
		}
	}
	return nil
}

// ApplyForJob устраивает игрока на работу.
func (s *Service) ApplyForJob(p *domain.Player, jobID string) (config.JobSpec, error) {
	if err := s.CanApplyForJob(p, jobID); err != nil {
		return config.JobSpec{}, err
	}
	job := s.data.Jobs[jobID]
	p.SetJob(job.Name, job.Salary)
	return job, nil
}

// Work засчитывает отработанные часы: зарплата, стаж и прокачка навыков
// по таблице вакансии.
func (s *Service) Work(p *domain.Player, hours int) (int, error) {
	if p.Job.Current == "" {
		return 0, domain.NewPolicyError(domain.ReasonNotEligible, "you do not have a job")
	}
	if hours <= 0 {
		return 0, domain.NewValidationError("hours must be positive")
	}

	earnings := p.AddWorkHours(hours)
	if spec := s.jobByTitle(p.Job.Current); spec != nil {
		for skill, gain := range spec.SkillGains {
			p.AddSkillXP(skill, gain*hours)
		}
	}
	return earnings, nil
}

func (s *Service) jobByTitle(title string) *config.JobSpec {
	for _, job := range s.data.Jobs {
		if job.Name == title {
			job := job
			return &job
		}
	}
	return nil
}

// BossFor возвращает id NPC-начальника для должности.
func (s *Service) BossFor(jobTitle string) string {
	if spec := s.jobByTitle(jobTitle); spec != nil && spec.Boss != "" {
		return spec.Boss
	}
	return "npc_manager"
}

// Jobs возвращает каталог вакансий в стабильном порядке.
func (s *Service) Jobs() []config.JobSpec {
	ids := make([]string, 0, len(s.data.Jobs))
	for id := range s.data.Jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]config.JobSpec, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.data.Jobs[id])
	}
	return out
}

// --- ЛИЦЕНЗИИ ---

// BuyLicense проверяет предусловия лицензии и списывает стоимость.
func (s *Service) BuyLicense(p *domain.Player, licenseID string) error {
	lic, ok := s.data.Licenses[licenseID]
	if !ok {
		return domain.NewValidationError("unknown license %q", licenseID)
	}
	if p.HasLicense(licenseID) {
		return domain.NewPolicyError(domain.ReasonNotEligible, "you already hold the %s", lic.Name)
	}
	if lic.MinAge > 0 && p.Age < lic.MinAge {
		return domain.NewPolicyError(domain.ReasonNotEligible, "you must be at least %d years old", lic.MinAge)
	}
	// MaxWanted задан только там, где чистое досье обязательно (оружие).
	if licenseID == "gun" && p.Stats.Wanted > lic.MaxWanted {
		return domain.NewPolicyError(domain.ReasonNotEligible, "your wanted level is too high for a gun permit")
	}
	if lic.MinMoney > 0 && p.Inventory.Money < lic.MinMoney {
		return domain.NewPolicyError(domain.ReasonInsufficientFunds,
			"you need at least $%d in cash", lic.MinMoney)
	}
	if p.Inventory.Money < lic.Cost {
		return domain.NewPolicyError(domain.ReasonInsufficientFunds,
			"the %s costs $%d, you have $%d", lic.Name, lic.Cost, p.Inventory.Money)
	}

	p.AddMoney(-lic.Cost)
	p.GrantLicense(licenseID)
	return nil
}

// --- ТРАНСПОРТ ---

// BuyVehicle: сначала лицензия, потом деньги. Порядок важен - отказ
// no_license должен приходить даже когда денег все равно не хватает.
func (s *Service) BuyVehicle(p *domain.Player, vehicleID string) error {
	veh, ok := s.data.Vehicles[vehicleID]
	if !ok {
		return domain.NewValidationError("unknown vehicle %q", vehicleID)
	}
	if veh.RequiresLicense && !p.Licenses.Driving {
		return domain.NewPolicyError(domain.ReasonNoLicense,
			"you need a driving license to buy a %s", veh.Name)
	}
	if p.Inventory.Money < veh.Price {
		return domain.NewPolicyError(domain.ReasonInsufficientFunds,
			"the %s costs $%d, you have $%d", veh.Name, veh.Price, p.Inventory.Money)
	}

	p.AddMoney(-veh.Price)
	p.Inventory.Vehicles = append(p.Inventory.Vehicles, domain.OwnedVehicle{
		ID:          uuid.NewString(),
		Name:        veh.Name,
		Fuel:        100,
		Condition:   100,
		PurchasedAt: time.Now().UnixMilli(),
	})
	return nil
}

// --- БАНК ---

// Deposit переносит наличные на счет. Отрицательных балансов не бывает.
func (s *Service) Deposit(p *domain.Player, amount int) error {
	if amount <= 0 {
		return domain.NewValidationError("amount must be positive")
	}
	if p.Inventory.Money < amount {
		return domain.NewPolicyError(domain.ReasonInsufficientFunds,
			"you only have $%d in cash", p.Inventory.Money)
	}
	p.Inventory.Money -= amount
	p.Inventory.Bank += amount
	return nil
}

// Withdraw переносит со счета в наличные.
func (s *Service) Withdraw(p *domain.Player, amount int) error {
	if amount <= 0 {
		return domain.NewValidationError("amount must be positive")
	}
	if p.Inventory.Bank < amount {
		return domain.NewPolicyError(domain.ReasonInsufficientFunds,
			"your bank balance is $%d", p.Inventory.Bank)
	}
	p.Inventory.Bank -= amount
	p.Inventory.Money += amount
	return nil
}

// ApplyForLoan - кредит: порог кредитного рейтинга и потолок банка.
// Одобренная сумма зачисляется на счет, долг фиксируется.
func (s *Service) ApplyForLoan(p *domain.Player, bankID string, amount int) error {
	bank := s.data.BankByID(bankID)
	if bank == nil {
		return domain.NewValidationError("unknown bank %q", bankID)
	}
	if amount <= 0 {
		return domain.NewValidationError("amount must be positive")
	}
	if p.Position.Location != bank.Location {
		return domain.NewPolicyError(domain.ReasonWrongCity,
			"%s has no branch in %s", bank.Name, p.Position.Location)
	}
	if p.Stats.CreditScore < bank.Loan.RequiredCreditScore {
		return domain.NewPolicyError(domain.ReasonLowCredit,
			"your credit score %d is below the required %d", p.Stats.CreditScore, bank.Loan.RequiredCreditScore)
	}
	if amount > bank.Loan.MaxAmount {
		return domain.NewPolicyError(domain.ReasonLoanTooLarge,
			"%s lends at most $%d", bank.Name, bank.Loan.MaxAmount)
	}

	p.Inventory.Bank += amount
	p.Inventory.Loans = append(p.Inventory.Loans, domain.Loan{
		BankID:       bankID,
		Amount:       amount,
		InterestRate: bank.Loan.InterestRate,
		IssuedAt:     time.Now().UnixMilli(),
	})
	return nil
}

// --- МАГАЗИНЫ ---

// BuyItem - покупка в магазине: магазин должен существовать и быть в
// городе игрока. Товары типа vehicle попадают в гараж, остальные - в
// инвентарь.
func (s *Service) BuyItem(p *domain.Player, shopID, itemID string) (config.ShopItem, error) {
	shop := s.data.ShopByID(shopID)
	if shop == nil {
		return config.ShopItem{}, domain.NewValidationError("unknown shop %q", shopID)
	}
	if p.Position.Location != shop.Location {
		return config.ShopItem{}, domain.NewPolicyError(domain.ReasonWrongCity,
			"%s is in %s, you are in %s", shop.Name, shop.Location, p.Position.Location)
	}

	var item *config.ShopItem
	for i := range shop.Inventory {
		if shop.Inventory[i].ID == itemID {
			item = &shop.Inventory[i]
			break
		}
	}
	if item == nil {
		return config.ShopItem{}, domain.NewValidationError("item %q is not sold at %s", itemID, shop.Name)
	}
	// Техника из магазина подчиняется тому же правилу, что и автосалон:
	// сначала права, потом деньги.
	if item.Type == "vehicle" && !p.Licenses.Driving {
		return config.ShopItem{}, domain.NewPolicyError(domain.ReasonNoLicense,
			"you need a driving license to buy a %s", item.Name)
	}
	if p.Inventory.Money < item.Price {
		return config.ShopItem{}, domain.NewPolicyError(domain.ReasonInsufficientFunds,
			"%s costs $%d, you have $%d", item.Name, item.Price, p.Inventory.Money)
	}

	p.AddMoney(-item.Price)
	if item.Type == "vehicle" {
		p.Inventory.Vehicles = append(p.Inventory.Vehicles, domain.OwnedVehicle{
			ID:          uuid.NewString(),
			Name:        item.Name,
			Fuel:        100,
			Condition:   100,
			PurchasedAt: time.Now().UnixMilli(),
		})
	} else {
		p.AddItem(item.Name, item.Type, 1)
	}
	return *item, nil
}
