package ai

import (
	"context"
	"strings"

	"livium-server/internal/domain"
)

// Базовый риск по категории; усредняется с опасностью локации.
var baseRisk = map[domain.ActionCategory]int{
	domain.ActionTheft:    70,
	domain.ActionCombat:   80,
	domain.ActionMovement: 10,
	domain.ActionSocial:   20,
	domain.ActionCommerce: 15,
	domain.ActionRest:     5,
	domain.ActionUnknown:  30,
}

var defaultIntensity = map[domain.ActionCategory]string{
	domain.ActionTheft:    domain.IntensityHigh,
	domain.ActionCombat:   domain.IntensityExtreme,
	domain.ActionMovement: domain.IntensityModerate,
	domain.ActionSocial:   domain.IntensityLow,
	domain.ActionCommerce: domain.IntensityLow,
	domain.ActionRest:     domain.IntensityLow,
	domain.ActionUnknown:  domain.IntensityModerate,
}

// keywordPattern - словарь категории. Порядок проверки фиксирован:
// рискованные глаголы побеждают ("run in and steal" - это кража).
type keywordPattern struct {
	category domain.ActionCategory
	words    []string
}

var patterns = []keywordPattern{
	{domain.ActionTheft, []string{"steal", "rob", "snatch", "pickpocket", "loot", "burgle", "shoplift"}},
	{domain.ActionCombat, []string{"attack", "fight", "punch", "hit ", "strike", "stab", "assault"}},
	{domain.ActionCommerce, []string{"buy", "sell", "pay", "negotiate", "trade", "haggle"}},
	{domain.ActionRest, []string{"sleep", "nap", "eat", "drink", "rest", "sit down", "relax"}},
	{domain.ActionSocial, []string{"talk", "speak", "greet", "ask", "meet", "chat", "say hello"}},
	{domain.ActionMovement, []string{"go ", "walk", "run", "head to", "leave", "cross", "drive", "travel"}},
}

var knownTargets = []string{
	"jewelry store", "shop", "store", "bar", "cafe", "restaurant", "bank", "market", "man", "woman",
}

// KeywordClassifier - деградированный классификатор без внешних вызовов.
// Он же финальный fallback: Classify никогда не возвращает ошибку.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (k *KeywordClassifier) Classify(_ context.Context, text string, loc *domain.Location) (domain.ClassifiedAction, error) {
	lower := strings.ToLower(text)

	category := domain.ActionUnknown
	for _, p := range patterns {
		if containsAny(lower, p.words) {
			category = p.category
			break
		}
	}

	action := domain.ClassifiedAction{
		Category:     category,
		Intensity:    defaultIntensity[category],
		Risk:         RiskFor(category, loc),
		OriginalText: text,
	}
	for _, target := range knownTargets {
		if strings.Contains(lower, target) {
			action.Target = target
			break
		}
	}
	return action, nil
}

// RiskFor: базовый риск категории, усредненный с опасностью локации.
func RiskFor(category domain.ActionCategory, loc *domain.Location) int {
	risk := baseRisk[category]
	if loc != nil && loc.Danger > 0 {
		risk = (risk + loc.Danger) / 2
	}
	if risk > 100 {
		risk = 100
	}
	return risk
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
