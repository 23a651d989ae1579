package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"livium-server/internal/ai"
	"livium-server/internal/config"
	"livium-server/internal/engine"
	"livium-server/internal/network"
	"livium-server/internal/server"
	"livium-server/internal/storage"
	"livium-server/internal/version"
	"livium-server/pkg/api"
	"livium-server/pkg/logger"
)

func init() {
	// .env опционален: в проде переменные приходят из окружения.
	_ = godotenv.Load()
	logger.Init()
}

func main() {
	// 1. Конфигурация
	var seed int64
	var dbPath string
	flag.Int64Var(&seed, "seed", 0, "World random seed (0 for time-based)")
	flag.StringVar(&dbPath, "db", "livium.db", "Path to the bbolt database file")
	flag.Parse()

	logger.Log.Info("Starting Livium...")
	logger.Log.Info(version.String())

	data, err := config.Load()
	if err != nil {
		logger.Log.Fatal("Failed to load game data: ", err)
	}

	store, err := storage.OpenBolt(dbPath)
	if err != nil {
		logger.Log.Fatal("Failed to open database: ", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close store")
		}
	}()

	// 2. Внешний AI (опционален: без ключа работает локальная деградация)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var classifier ai.Classifier
	var narrator ai.Narrator
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gem, err := ai.NewGemini(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			logger.Log.WithError(err).Warn("Gemini unavailable, running in local mode")
		} else {
			defer func() {
				if err := gem.Close(); err != nil {
					logger.Log.WithError(err).Debug("gemini close failed")
				}
			}()
			classifier = gem
			narrator = gem
			logger.Log.Info("Gemini classifier/narrator enabled")
		}
	} else {
		logger.Log.Info("GEMINI_API_KEY not set, using keyword classifier and template narrator")
	}

	// 3. Ядро. Хаб создается раньше: фоновый тик шлет через него
	// внеочередные сообщения (выговор за прогул).
	hub := network.NewBroadcaster()
	game, err := engine.NewService(engine.Options{
		Store:      store,
		Data:       data,
		Seed:       seed,
		Classifier: classifier,
		Narrator:   narrator,
		Notify:     func(msg api.OutboundMessage) { hub.SendTo(msg) },
	})
	if err != nil {
		logger.Log.Fatal("Failed to start engine: ", err)
	}
	go game.Run(ctx)

	// 4. Транспорт
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := server.New(game, hub, port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down...")
	cancel()
	logger.Log.Info("Done.")
}
