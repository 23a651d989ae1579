// Package engine - оркестратор игры: принимает входящие сообщения,
// ведет игроков через создание персонажа, маршрутизирует команды и
// свободные действия, двигает мировые часы.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"livium-server/internal/ai"
	"livium-server/internal/clock"
	"livium-server/internal/config"
	"livium-server/internal/consequence"
	"livium-server/internal/domain"
	"livium-server/internal/economy"
	"livium-server/internal/family"
	"livium-server/internal/movement"
	"livium-server/internal/npc"
	"livium-server/internal/social"
	"livium-server/internal/storage"
	"livium-server/pkg/api"
	"livium-server/pkg/logger"
)

// Options - внешние зависимости сервиса. Nil-поля заменяются
// локальными реализациями (деградированный режим).
type Options struct {
	Store      storage.Store
	Data       *config.GameData
	Seed       int64
	Now        func() time.Time
	Classifier ai.Classifier // опционально: внешний AI
	Narrator   ai.Narrator   // опционально: внешний AI

	// Notify - канал внеочередных сообщений игроку (фоновый тик:
	// прогул работы и т.п.). Необязателен: без него предупреждения
	// просто не доставляются офлайн-транспортом.
	Notify func(api.OutboundMessage)
}

// GameService связывает подсистемы. Подсистемы друг о друге не знают:
// весь поток данных между ними проходит здесь.
type GameService struct {
	store storage.Store
	data  *config.GameData
	rng   domain.Rand
	now   func() time.Time

	clock        *clock.Clock
	movement     *movement.Service
	economy      *economy.Service
	npcs         *npc.Registry
	family       *family.Service
	social       *social.Service
	classifier   ai.Classifier
	narrator     ai.Narrator
	illustrator  ai.Illustrator
	consequences *consequence.Engine

	notify func(api.OutboundMessage)

	worldMu sync.Mutex
	world   *domain.World

	// Per-player мьютексы: действия одного игрока строго последовательны,
	// разных игроков - параллельны.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	commands  map[string]commandFunc
	startedAt time.Time
}

// NewService собирает сервис и бутстрапит мир (время, NPC из сид-данных).
func NewService(opts Options) (*GameService, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("engine: store is required")
	}
	if opts.Data == nil {
		return nil, fmt.Errorf("engine: game data is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Now().UnixNano()
	}

	rng := newLockedRand(opts.Seed)
	cityIDs := make([]string, 0, len(opts.Data.Locations))
	for id := range opts.Data.Locations {
		cityIDs = append(cityIDs, id)
	}

	s := &GameService{
		store:       opts.Store,
		data:        opts.Data,
		rng:         rng,
		now:         opts.Now,
		clock:       clock.NewWithNow(opts.Now, rng),
		movement:    movement.New(opts.Data, rng),
		economy:     economy.New(opts.Data),
		npcs:        npc.NewRegistry(opts.Store, rng),
		family:      family.NewWithNow(opts.Now, rng),
		social:      social.NewWithNow(opts.Store, rng, opts.Now),
		classifier:  ai.NewResilientClassifier(opts.Classifier, ai.NewKeywordClassifier()),
		narrator:    ai.NewResilientNarrator(opts.Narrator, ai.NewTemplateNarrator(rng)),
		illustrator: ai.NewPollinationsIllustrator(),
		notify:      opts.Notify,
		locks:       map[string]*sync.Mutex{},
		startedAt:   opts.Now(),
	}
	s.consequences = consequence.New(cityIDs, rng)
	s.registerCommands()

	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

// HandleMessage обрабатывает одно входящее сообщение от начала до конца
// и возвращает ответ. Пустой текст ответа значит "не отвечать".
func (s *GameService) HandleMessage(ctx context.Context, msg api.InboundMessage) (api.OutboundMessage, error) {
	if err := msg.Validate(); err != nil {
		return api.OutboundMessage{}, err
	}

	unlock := s.lockPlayer(msg.SenderID)
	defer unlock()

	s.advanceWorld()

	p, created, err := s.getOrCreatePlayer(msg.SenderID)
	if err != nil {
		return api.OutboundMessage{}, err
	}

	text := strings.TrimSpace(msg.Text)
	isCommand := strings.HasPrefix(text, "/")

	// В групповых чатах работают только команды.
	if msg.IsGroup && !isCommand {
		return api.OutboundMessage{}, nil
	}

	if created {
		return s.reply(msg, "Welcome to Livium, a second life in text.\nWhat is your character's name?"), nil
	}

	if isCommand {
		body, err := s.dispatchCommand(ctx, p, text)
		if err != nil {
			return s.replyError(msg, err), nil
		}
		return s.reply(msg, body), nil
	}

	// Диалог создания персонажа перехватывает весь свободный текст.
	if !p.CharacterCreated {
		replyText, _ := p.AdvanceCreation(text)
		p.Touch()
		if err := s.store.PutPlayer(p); err != nil {
			return api.OutboundMessage{}, err
		}
		return s.reply(msg, replyText), nil
	}

	if !p.IsAlive() {
		return s.reply(msg, "You are dead. Type /start to begin a new life."), nil
	}

	body, imageURL, err := s.handleFreeAction(ctx, p, text)
	if err != nil {
		return s.replyError(msg, err), nil
	}
	out := s.reply(msg, body)
	out.ImageURL = imageURL
	return out, nil
}

func (s *GameService) reply(msg api.InboundMessage, text string) api.OutboundMessage {
	return api.OutboundMessage{RecipientID: msg.SenderID, Text: text}
}

// replyError переводит доменные отказы в текст для игрока.
// Инфраструктурные ошибки наружу не показываются.
func (s *GameService) replyError(msg api.InboundMessage, err error) api.OutboundMessage {
	switch e := err.(type) {
	case *domain.ValidationError:
		return s.reply(msg, e.What)
	case *domain.PolicyError:
		return s.reply(msg, e.Msg)
	default:
		logger.Log.WithFields(logrus.Fields{
			"component": "engine",
			"player":    msg.SenderID,
			"error":     err.Error(),
		}).Error("Message handling failed")
		return s.reply(msg, "Something went wrong on our side. Try again in a moment.")
	}
}

func (s *GameService) lockPlayer(id string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (s *GameService) getOrCreatePlayer(id string) (p *domain.Player, created bool, err error) {
	p, err = s.store.GetPlayer(id)
	if err != nil {
		return nil, false, err
	}
	if p != nil {
		return p, false, nil
	}
	p = domain.NewPlayer(id, id)
	if err := s.store.PutPlayer(p); err != nil {
		return nil, false, err
	}
	logger.Log.WithFields(logrus.Fields{
		"component": "engine",
		"player":    id,
	}).Info("New player registered")
	return p, true, nil
}

// timeSnapshot возвращает копию текущего игрового времени.
func (s *GameService) timeSnapshot() domain.TimeState {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	return s.world.Time
}

// location возвращает город игрока из мирового каталога.
func (s *GameService) location(p *domain.Player) *domain.Location {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	return s.world.Location(p.Position.Location)
}

// advanceWorld лениво пересчитывает мировое время; персистит при смене часа.
func (s *GameService) advanceWorld() {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	if s.clock.Advance(&s.world.Time) {
		if err := s.store.PutWorld(s.world); err != nil {
			logger.Log.WithField("error", err.Error()).Error("Failed to persist world time")
		}
	}
}

// burnGameMinutes прожигает игровое время действия (поездка, авария).
func (s *GameService) burnGameMinutes(minutes int) {
	if minutes <= 0 {
		return
	}
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	s.clock.AdvanceGameMinutes(&s.world.Time, minutes)
	if err := s.store.PutWorld(s.world); err != nil {
		logger.Log.WithField("error", err.Error()).Error("Failed to persist world time")
	}
}

// Stats - снимок для дашборда.
func (s *GameService) Stats() (api.StatsSnapshot, error) {
	players, err := s.store.Players()
	if err != nil {
		return api.StatsSnapshot{}, err
	}
	npcs, err := s.store.NPCs()
	if err != nil {
		return api.StatsSnapshot{}, err
	}
	ts := s.timeSnapshot()
	return api.StatsSnapshot{
		Status:    "ok",
		Players:   len(players),
		NPCs:      len(npcs),
		Locations: len(s.data.Locations),
		GameDay:   ts.CurrentDay,
		GameHour:  ts.CurrentHour,
		Weather:   ts.Weather,
		Uptime:    s.now().Sub(s.startedAt).Truncate(time.Second).String(),
	}, nil
}
