package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"livium-server/internal/domain"
)

const defaultModel = "gemini-2.5-flash"

// Gemini реализует Classifier и Narrator поверх Google Generative AI.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini создает клиента. Пустая модель - значение по умолчанию.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

const classifyPrompt = `You are the action classifier of a text-based life simulation.
Classify the player's action into strict JSON with exactly these fields:
{"category":"movement|theft|combat|social|commerce|rest|unknown","intensity":"low|moderate|high|extreme","risk":0-100,"target":"<noun or empty>"}
Answer with the JSON object only, no prose, no code fences.

Player action: %q`

// classifyReply - ожидаемая форма ответа модели.
type classifyReply struct {
	Category  string `json:"category"`
	Intensity string `json:"intensity"`
	Risk      int    `json:"risk"`
	Target    string `json:"target"`
}

func (g *Gemini) Classify(ctx context.Context, text string, loc *domain.Location) (domain.ClassifiedAction, error) {
	resp, err := g.client.GenerativeModel(g.model).
		GenerateContent(ctx, genai.Text(fmt.Sprintf(classifyPrompt, text)))
	if err != nil {
		return domain.ClassifiedAction{}, fmt.Errorf("classify: %w", err)
	}

	var reply classifyReply
	if err := json.Unmarshal([]byte(stripFences(responseText(resp))), &reply); err != nil {
		return domain.ClassifiedAction{}, fmt.Errorf("classify: malformed reply: %w", err)
	}

	category := domain.ParseCategory(reply.Category)
	action := domain.ClassifiedAction{
		Category:     category,
		Intensity:    normalizeIntensity(reply.Intensity),
		Risk:         clampRisk(reply.Risk),
		Target:       reply.Target,
		OriginalText: text,
	}
	// Опасность локации учитывается и для ответа модели.
	if loc != nil && loc.Danger > 0 {
		action.Risk = clampRisk((action.Risk + loc.Danger) / 2)
	}
	return action, nil
}

const narratePrompt = `You are the narrator of an immersive text role-play life simulation.
You are the game master: describe the world, the action and its consequences.
Address the player as "you". Never ask questions, never give suggestions.
Present tense, short punchy sentences, 2 to 4 sentences maximum.

Scene:
- Player: %s (health %d%%, energy %d%%, cash %d$)
- Location: %s
- Hour: %02d:00, weather: %s
- Bystander reactions: %s
- Mechanical outcome (already decided, do not contradict it): %s

Player action: %q

Narrate the scene now.`

func (g *Gemini) Narrate(ctx context.Context, nc NarrativeContext) (string, error) {
	npcLines := strings.Join(nc.NPCLines, " | ")
	if npcLines == "" {
		npcLines = "nobody reacts"
	}
	outcome, _ := json.Marshal(nc.Outcome)

	prompt := fmt.Sprintf(narratePrompt,
		nc.PlayerName, nc.Health, nc.Energy, nc.Money,
		nc.Location, nc.Hour, nc.Weather, npcLines, outcome, nc.ActionText)

	resp, err := g.client.GenerativeModel(g.model).
		GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("narrate: %w", err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", fmt.Errorf("narrate: empty reply")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	return b.String()
}

// stripFences убирает обертку ```json ... ```, которую модели любят
// добавлять вопреки инструкции.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func normalizeIntensity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case domain.IntensityLow, domain.IntensityModerate, domain.IntensityHigh, domain.IntensityExtreme:
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return domain.IntensityModerate
	}
}

func clampRisk(r int) int {
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
