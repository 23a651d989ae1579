package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"livium-server/internal/clock"
	"livium-server/internal/domain"
	"livium-server/internal/family"
)

// commandFunc - обработчик одной slash-команды. Возвращаемый текст
// уходит игроку как есть; доменные ошибки переводит replyError.
type commandFunc func(ctx context.Context, p *domain.Player, args []string) (string, error)

func (s *GameService) registerCommands() {
	s.commands = map[string]commandFunc{
		"/start":          s.cmdStart,
		"/stats":          s.cmdStats,
		"/help":           s.cmdHelp,
		"/travel":         s.cmdTravel,
		"/map":            s.cmdMap,
		"/go":             s.cmdGo,
		"/jobs":           s.cmdJobs,
		"/apply":          s.cmdApply,
		"/work":           s.cmdWork,
		"/license":        s.cmdLicense,
		"/vehicles":       s.cmdVehicles,
		"/buyvehicle":     s.cmdBuyVehicle,
		"/shop":           s.cmdShop,
		"/buy":            s.cmdBuy,
		"/banks":          s.cmdBanks,
		"/deposit":        s.cmdDeposit,
		"/withdraw":       s.cmdWithdraw,
		"/loan":           s.cmdLoan,
		"/marry":          s.cmdMarry,
		"/acceptmarriage": s.cmdAcceptMarriage,
		"/refusemarriage": s.cmdRefuseMarriage,
		"/duel":           s.cmdDuel,
		"/acceptduel":     s.cmdAcceptDuel,
		"/refuseduel":     s.cmdRefuseDuel,
		"/conceive":       s.cmdConceive,
		"/namechild":      s.cmdNameChild,
		"/children":       s.cmdChildren,
	}
}

// dispatchCommand разбирает текст команды и вызывает обработчик.
// Мертвым игрокам доступен только /start.
func (s *GameService) dispatchCommand(ctx context.Context, p *domain.Player, text string) (string, error) {
	fields := strings.Fields(text)
	name := strings.ToLower(fields[0])

	handler, ok := s.commands[name]
	if !ok {
		return "Unknown command. Type /help for the list.", nil
	}
	if !p.IsAlive() && name != "/start" {
		return "You are dead. Type /start to begin a new life.", nil
	}
	return handler(ctx, p, fields[1:])
}

// --- ЖИЗНЕННЫЙ ЦИКЛ ---

func (s *GameService) cmdStart(_ context.Context, p *domain.Player, _ []string) (string, error) {
	if !p.IsAlive() {
		p.Reset()
		if err := s.store.PutPlayer(p); err != nil {
			return "", err
		}
		return fmt.Sprintf("A new life begins for %s. You wake up in %s with $%d in your pocket.",
			p.DisplayName(), p.Position.Location, p.Inventory.Money), nil
	}
	if !p.CharacterCreated {
		reply, _ := p.AdvanceCreation("")
		if reply == "" {
			reply = "What is your character's name?"
		}
		return reply, nil
	}
	return fmt.Sprintf("%s is already living their life in %s. Type /stats to see how it is going.",
		p.DisplayName(), p.Position.Location), nil
}

func (s *GameService) cmdStats(_ context.Context, p *domain.Player, _ []string) (string, error) {
	ts := s.timeSnapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "%s — day %d, %02d:00, %s\n\n", p.DisplayName(), ts.CurrentDay, ts.CurrentHour, ts.Weather)
	fmt.Fprintf(&b, "Health %d | Energy %d | Hunger %d | Mental %d | Wanted %d\n",
		p.Stats.Health, p.Stats.Energy, p.Stats.Hunger, p.Stats.Mental, p.Stats.Wanted)
	fmt.Fprintf(&b, "Cash $%d | Bank $%d | Credit score %d\n",
		p.Inventory.Money, p.Inventory.Bank, p.Stats.CreditScore)
	fmt.Fprintf(&b, "Location: %s (%d,%d)\n", p.Position.Location, p.Position.X, p.Position.Y)
	if p.Job.Current != "" {
		fmt.Fprintf(&b, "Job: %s, %d hours worked\n", p.Job.Current, p.Job.WorkHours)
	} else {
		b.WriteString("Unemployed. See /jobs.\n")
	}
	if len(p.Inventory.Vehicles) > 0 {
		names := make([]string, 0, len(p.Inventory.Vehicles))
		for _, v := range p.Inventory.Vehicles {
			names = append(names, v.Name)
		}
		fmt.Fprintf(&b, "Garage: %s\n", strings.Join(names, ", "))
	}
	if p.Family.Spouse != "" {
		fmt.Fprintf(&b, "Married to %s\n", p.Family.SpouseName)
	}

	skills := make([]string, 0, len(p.Skills))
	for name, lvl := range p.Skills {
		if lvl > 0 {
			skills = append(skills, fmt.Sprintf("%s %d", name, lvl))
		}
	}
	if len(skills) > 0 {
		sort.Strings(skills)
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(skills, ", "))
	}
	return b.String(), nil
}

func (s *GameService) cmdHelp(_ context.Context, _ *domain.Player, _ []string) (string, error) {
	return `LIVIUM — a second life in text.
Write what you do in plain words: "walk to the station", "talk to the bartender", "steal an apple".

Commands:
/start — begin (or restart after death)
/stats — your character sheet
/map — districts around you, /go <district> — move there
/travel <city> — move to another city
/jobs, /apply <job>, /work <hours>
/license <driving|gun|business>
/vehicles, /buyvehicle <vehicle>
/shop, /buy <shop> <item>
/banks, /deposit <amount>, /withdraw <amount>, /loan <bank> <amount>
/marry <player>, /acceptmarriage <player>, /refusemarriage <player>
/duel <player>, /acceptduel <player>, /refuseduel <player>
/conceive, /namechild <name>, /children`, nil
}

// --- ПЕРЕМЕЩЕНИЕ ---

func (s *GameService) cmdGo(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Where to? /go <district>. See /map.", nil
	}
	district := strings.ToLower(strings.Join(args, "_"))

	hasVehicle := len(p.Inventory.Vehicles) > 0
	res, err := s.movement.Move(p, district, hasVehicle, p.Licenses.Driving)
	if err != nil {
		return "", err
	}

	delta := domain.StatDelta{Energy: res.Energy, Health: res.Health}
	p.ApplyStats(delta)
	s.applyCash(p, res.Cash)
	if res.OK {
		p.Position.X = res.NewX
		p.Position.Y = res.NewY
	}
	p.AddHistory("/go "+district, delta, nil)
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	s.burnGameMinutes(res.TimeCost)
	return res.Summary, nil
}

func (s *GameService) cmdMap(_ context.Context, p *domain.Player, _ []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.movement.Surroundings(p.Position.Location, p.Position.X, p.Position.Y))

	if cm, ok := s.data.Cities[p.Position.Location]; ok {
		keys := make([]string, 0, len(cm.Districts))
		for k := range cm.Districts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nDistricts: ")
		b.WriteString(strings.Join(keys, ", "))
	}
	return b.String(), nil
}

func (s *GameService) cmdTravel(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		cities := append([]string(nil), s.data.TravelOrder...)
		return "Travel where? /travel <city>\nCities: " + strings.Join(cities, ", "), nil
	}
	target := strings.ToLower(strings.Join(args, "_"))

	res, err := s.movement.Travel(p, target)
	if err != nil {
		return "", err
	}

	delta := domain.StatDelta{Energy: res.Energy}
	p.ApplyStats(delta)
	p.Position.Location = res.City
	p.Position.X, p.Position.Y = 0, 0
	p.AddHistory("/travel "+target, delta, nil)
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	s.burnGameMinutes(res.TimeCost)
	return fmt.Sprintf("After %d km you arrive in %s. The journey took %d game minutes.",
		res.DistanceKm, res.City, res.TimeCost), nil
}

// --- ЭКОНОМИКА ---

func (s *GameService) cmdJobs(_ context.Context, _ *domain.Player, _ []string) (string, error) {
	var b strings.Builder
	b.WriteString("JOB MARKET\n")
	for _, job := range s.economy.Jobs() {
		tag := ""
		if job.Illegal {
			tag = " [illegal]"
		}
		fmt.Fprintf(&b, "- %s: $%d/week%s\n", job.Name, job.Salary, tag)
	}
	b.WriteString("\nApply with /apply <job name>.")
	return b.String(), nil
}

func (s *GameService) cmdApply(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Apply for what? /apply <job>. See /jobs.", nil
	}
	jobID := strings.ToLower(strings.Join(args, "_"))

	job, err := s.economy.ApplyForJob(p, jobID)
	if err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("You are hired as a %s at $%d a week. Show up with /work <hours>.",
		job.Name, job.Salary), nil
}

func (s *GameService) cmdWork(_ context.Context, p *domain.Player, args []string) (string, error) {
	hours := 4
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return "", domain.NewValidationError("hours must be a number, e.g. /work 4")
		}
		hours = parsed
	}

	ts := s.timeSnapshot()
	if !clock.IsWorkHour(ts.CurrentHour) {
		return fmt.Sprintf("It is %02d:00 — the workplace is closed. Working hours are 8:00-13:00 and from 19:00.", ts.CurrentHour), nil
	}

	earnings, err := s.economy.Work(p, hours)
	if err != nil {
		return "", err
	}
	p.Job.AtWork = true
	p.ApplyStats(domain.StatDelta{Energy: -5 * hours})
	p.AddHistory(fmt.Sprintf("/work %d", hours), domain.StatDelta{Energy: -5 * hours}, nil)
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	s.burnGameMinutes(hours * 60)
	return fmt.Sprintf("You work %d hour(s) as a %s and earn $%d.", hours, p.Job.Current, earnings), nil
}

func (s *GameService) cmdLicense(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		var b strings.Builder
		b.WriteString("LICENSES\n")
		ids := make([]string, 0, len(s.data.Licenses))
		for id := range s.data.Licenses {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			spec := s.data.Licenses[id]
			owned := ""
			if p.HasLicense(id) {
				owned = " (owned)"
			}
			fmt.Fprintf(&b, "- %s: $%d%s\n", spec.Name, spec.Cost, owned)
		}
		b.WriteString("\nBuy with /license <driving|gun|business>.")
		return b.String(), nil
	}

	id := strings.ToLower(args[0])
	if err := s.economy.BuyLicense(p, id); err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Congratulations, you now hold a %s.", s.data.Licenses[id].Name), nil
}

func (s *GameService) cmdVehicles(_ context.Context, p *domain.Player, _ []string) (string, error) {
	var b strings.Builder
	b.WriteString("VEHICLE CATALOG\n")
	ids := make([]string, 0, len(s.data.Vehicles))
	for id := range s.data.Vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := s.data.Vehicles[id]
		lic := ""
		if v.RequiresLicense {
			lic = " (license required)"
		}
		fmt.Fprintf(&b, "- %s [%s]: $%d%s\n", v.Name, id, v.Price, lic)
	}
	if len(p.Inventory.Vehicles) > 0 {
		b.WriteString("\nYour garage:\n")
		for _, v := range p.Inventory.Vehicles {
			fmt.Fprintf(&b, "- %s (fuel %d%%, condition %d%%)\n", v.Name, v.Fuel, v.Condition)
		}
	}
	b.WriteString("\nBuy with /buyvehicle <id>.")
	return b.String(), nil
}

func (s *GameService) cmdBuyVehicle(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Buy what? /buyvehicle <id>. See /vehicles.", nil
	}
	id := strings.ToLower(args[0])

	if err := s.economy.BuyVehicle(p, id); err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("The %s is yours. It is waiting in your garage.", s.data.Vehicles[id].Name), nil
}

func (s *GameService) cmdShop(_ context.Context, p *domain.Player, _ []string) (string, error) {
	shops := s.data.ShopsIn(p.Position.Location)
	if len(shops) == 0 {
		return "No shops in " + p.Position.Location + ".", nil
	}
	var b strings.Builder
	for _, shop := range shops {
		fmt.Fprintf(&b, "%s [%s]\n", shop.Name, shop.ID)
		for _, item := range shop.Inventory {
			fmt.Fprintf(&b, "  - %s [%s]: $%d\n", item.Name, item.ID, item.Price)
		}
	}
	b.WriteString("\nBuy with /buy <shop id> <item id>.")
	return b.String(), nil
}

func (s *GameService) cmdBuy(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) < 2 {
		return "Usage: /buy <shop id> <item id>. See /shop.", nil
	}

	item, err := s.economy.BuyItem(p, strings.ToLower(args[0]), strings.ToLower(args[1]))
	if err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("You buy a %s for $%d.", item.Name, item.Price), nil
}

func (s *GameService) cmdBanks(_ context.Context, p *domain.Player, _ []string) (string, error) {
	banks := s.data.BanksIn(p.Position.Location)
	if len(banks) == 0 {
		return "No banks in " + p.Position.Location + ".", nil
	}
	var b strings.Builder
	for _, bank := range banks {
		fmt.Fprintf(&b, "%s [%s]: loans up to $%d at %.0f%%, credit score %d+\n",
			bank.Name, bank.ID, bank.Loan.MaxAmount, bank.Loan.InterestRate*100, bank.Loan.RequiredCreditScore)
	}
	fmt.Fprintf(&b, "\nYour balance: $%d cash, $%d on account, credit score %d.\n",
		p.Inventory.Money, p.Inventory.Bank, p.Stats.CreditScore)
	b.WriteString("/deposit <amount>, /withdraw <amount>, /loan <bank id> <amount>")
	return b.String(), nil
}

func (s *GameService) cmdDeposit(_ context.Context, p *domain.Player, args []string) (string, error) {
	amount, err := parseAmount(args)
	if err != nil {
		return "", err
	}
	if err := s.economy.Deposit(p, amount); err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deposited $%d. Account: $%d, cash: $%d.", amount, p.Inventory.Bank, p.Inventory.Money), nil
}

func (s *GameService) cmdWithdraw(_ context.Context, p *domain.Player, args []string) (string, error) {
	amount, err := parseAmount(args)
	if err != nil {
		return "", err
	}
	if err := s.economy.Withdraw(p, amount); err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Withdrew $%d. Account: $%d, cash: $%d.", amount, p.Inventory.Bank, p.Inventory.Money), nil
}

func (s *GameService) cmdLoan(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) < 2 {
		return "Usage: /loan <bank id> <amount>. See /banks.", nil
	}
	amount, err := parseAmount(args[1:])
	if err != nil {
		return "", err
	}
	if err := s.economy.ApplyForLoan(p, strings.ToLower(args[0]), amount); err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Loan approved: $%d lands on your account. Account balance: $%d.", amount, p.Inventory.Bank), nil
}

func parseAmount(args []string) (int, error) {
	if len(args) == 0 {
		return 0, domain.NewValidationError("amount is required")
	}
	amount, err := strconv.Atoi(args[0])
	if err != nil || amount <= 0 {
		return 0, domain.NewValidationError("amount must be a positive number")
	}
	return amount, nil
}

// --- СЕМЬЯ И ИГРОК-ИГРОК ---

// otherPlayer находит второго участника взаимодействия.
// Его per-player лок не берется: социальный сервис сериализует
// изменения своим мьютексом и персистит обе записи сам.
func (s *GameService) otherPlayer(id string) (*domain.Player, error) {
	other, err := s.store.GetPlayer(id)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, domain.NewValidationError("no player %q around here", id)
	}
	if !other.CharacterCreated {
		return nil, domain.NewValidationError("player %q has not finished creating their character", id)
	}
	return other, nil
}

func (s *GameService) cmdMarry(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Propose to whom? /marry <player>", nil
	}
	other, err := s.otherPlayer(args[0])
	if err != nil {
		return "", err
	}
	if err := s.social.ProposeMarriage(p, other); err != nil {
		return "", err
	}
	return fmt.Sprintf("You propose to %s. They can answer with /acceptmarriage %s or /refusemarriage %s.",
		other.DisplayName(), p.ID, p.ID), nil
}

func (s *GameService) cmdAcceptMarriage(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Accept whose proposal? /acceptmarriage <player>", nil
	}
	proposer, err := s.otherPlayer(args[0])
	if err != nil {
		return "", err
	}
	if err := s.social.AcceptMarriage(proposer, p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Wedding bells! You are now married to %s.", proposer.DisplayName()), nil
}

func (s *GameService) cmdRefuseMarriage(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Refuse whose proposal? /refusemarriage <player>", nil
	}
	if err := s.social.RefuseMarriage(args[0], p.ID); err != nil {
		return "", err
	}
	return "You turn the proposal down. Life goes on.", nil
}

func (s *GameService) cmdDuel(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Challenge whom? /duel <player>", nil
	}
	other, err := s.otherPlayer(args[0])
	if err != nil {
		return "", err
	}
	if err := s.social.ChallengeDuel(p, other); err != nil {
		return "", err
	}
	return fmt.Sprintf("You challenge %s to a duel. They can answer with /acceptduel %s or /refuseduel %s.",
		other.DisplayName(), p.ID, p.ID), nil
}

func (s *GameService) cmdAcceptDuel(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Accept whose challenge? /acceptduel <player>", nil
	}
	challenger, err := s.otherPlayer(args[0])
	if err != nil {
		return "", err
	}
	res, err := s.social.AcceptDuel(challenger, p)
	if err != nil {
		return "", err
	}
	return res.Summary(), nil
}

func (s *GameService) cmdRefuseDuel(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Refuse whose challenge? /refuseduel <player>", nil
	}
	if err := s.social.RefuseDuel(args[0], p.ID); err != nil {
		return "", err
	}
	return "You decline the duel. Some fights are not worth having.", nil
}

// cmdConceive - попытка завести ребенка. Только в браке; срок идет у
// того из супругов, кто может выносить (пол/возраст по праву семьи).
func (s *GameService) cmdConceive(_ context.Context, p *domain.Player, _ []string) (string, error) {
	if p.Family.Spouse == "" {
		return "", domain.NewPolicyError(domain.ReasonNotEligible,
			"You need to be married first. Try /marry <player>.")
	}

	// К супругу переходим только если сам игрок выносить не может в
	// принципе; "уже беременна" - окончательный отказ, не переадресация.
	carrier := p
	if err := family.CanStartPregnancy(p); err != nil {
		if domain.ReasonOf(err) == domain.ReasonAlreadyPregnant {
			return "", err
		}
		spouse, err := s.otherPlayer(p.Family.Spouse)
		if err != nil {
			return "", err
		}
		carrier = spouse
	}
	if err := s.family.StartPregnancy(carrier); err != nil {
		return "", err
	}
	carrier.Touch()
	if err := s.store.PutPlayer(carrier); err != nil {
		return "", err
	}

	if carrier.ID == p.ID {
		return "You are pregnant! The baby is due in 9 days.", nil
	}
	return fmt.Sprintf("%s is pregnant! The baby is due in 9 days.", carrier.DisplayName()), nil
}

func (s *GameService) cmdNameChild(_ context.Context, p *domain.Player, args []string) (string, error) {
	if len(args) == 0 {
		return "Name the child what? /namechild <name>", nil
	}
	child, err := family.NameChild(p, strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	p.Touch()
	if err := s.store.PutPlayer(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("The %s is now called %s.", child.Gender, child.Name), nil
}

func (s *GameService) cmdChildren(_ context.Context, p *domain.Player, _ []string) (string, error) {
	changed := s.family.UpdateChildren(p)

	var b strings.Builder
	if p.Family.Pregnant {
		// CheckPregnancy может родить прямо здесь, если срок вышел.
		b.WriteString(s.family.CheckPregnancy(p))
		b.WriteString("\n")
		changed = true
	}
	if changed {
		if err := s.store.PutPlayer(p); err != nil {
			return "", err
		}
	}
	if len(p.Family.Children) == 0 && !p.Family.Pregnant {
		return "You have no children yet.", nil
	}
	for _, c := range p.Family.Children {
		name := c.Name
		if name == "" {
			name = "unnamed " + c.Gender
		}
		fmt.Fprintf(&b, "- %s, %d day(s) old\n", name, c.AgeDays)
	}
	return b.String(), nil
}

// applyCash меняет наличные с полом в ноль: уличные штрафы не загоняют
// игрока в минус.
func (s *GameService) applyCash(p *domain.Player, delta int) {
	p.AddMoney(delta)
	if p.Inventory.Money < 0 {
		p.Inventory.Money = 0
	}
}
