// Package ai - внешний интеллект: классификатор действий, нарратор и
// иллюстратор. У каждого интерфейса есть боевая реализация на Gemini и
// деградированная локальная; сбой внешнего сервиса до игрока не доходит.
package ai

import (
	"context"

	"livium-server/internal/domain"
)

// Classifier превращает свободный текст игрока в структурированное действие.
type Classifier interface {
	Classify(ctx context.Context, text string, loc *domain.Location) (domain.ClassifiedAction, error)
}

// NarrativeContext - все, что нарратору позволено знать о сцене.
type NarrativeContext struct {
	PlayerName string
	Location   string
	Hour       int
	Weather    string
	ActionText string
	Outcome    domain.Consequence
	NPCLines   []string
	Money      int
	Health     int
	Energy     int
}

// Narrator описывает сцену после того, как механика уже все решила.
// Нарратор никогда не влияет на исход.
type Narrator interface {
	Narrate(ctx context.Context, nc NarrativeContext) (string, error)
}

// Illustrator возвращает URL изображения сцены. Пустая строка допустима.
type Illustrator interface {
	Illustrate(nc NarrativeContext) string
}
