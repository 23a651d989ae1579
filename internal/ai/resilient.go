package ai

import (
	"context"

	"github.com/sirupsen/logrus"

	"livium-server/internal/domain"
	"livium-server/pkg/logger"
)

// ResilientClassifier пробует основной классификатор и молча деградирует
// на запасной. Ошибку наружу не отдает никогда: запасной словарный
// классификатор безотказен.
type ResilientClassifier struct {
	primary  Classifier
	fallback Classifier
}

// NewResilientClassifier: primary может быть nil (режим без внешнего AI).
func NewResilientClassifier(primary Classifier, fallback Classifier) *ResilientClassifier {
	return &ResilientClassifier{primary: primary, fallback: fallback}
}

func (r *ResilientClassifier) Classify(ctx context.Context, text string, loc *domain.Location) (domain.ClassifiedAction, error) {
	if r.primary != nil {
		action, err := r.primary.Classify(ctx, text, loc)
		if err == nil {
			return action, nil
		}
		logger.Log.WithFields(logrus.Fields{
			"component": "ai",
			"error":     err.Error(),
		}).Warn("Classifier degraded to keyword analysis")
	}
	return r.fallback.Classify(ctx, text, loc)
}

// ResilientNarrator - то же для нарратора.
type ResilientNarrator struct {
	primary  Narrator
	fallback Narrator
}

func NewResilientNarrator(primary Narrator, fallback Narrator) *ResilientNarrator {
	return &ResilientNarrator{primary: primary, fallback: fallback}
}

func (r *ResilientNarrator) Narrate(ctx context.Context, nc NarrativeContext) (string, error) {
	if r.primary != nil {
		text, err := r.primary.Narrate(ctx, nc)
		if err == nil {
			return text, nil
		}
		logger.Log.WithFields(logrus.Fields{
			"component": "ai",
			"error":     err.Error(),
		}).Warn("Narrator degraded to template scenes")
	}
	return r.fallback.Narrate(ctx, nc)
}
