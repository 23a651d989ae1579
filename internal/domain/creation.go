package domain

import (
	"strconv"
	"strings"
)

// CreationStage - шаг диалога создания персонажа.
// Раньше (в референсе) это был набор строковых сравнений, размазанных по
// обработчику сообщений; здесь - явная машина состояний, независимая от
// транспорта. Состояние персистится вместе с игроком, диалог переживает
// рестарт процесса.
type CreationStage string

const (
	StageName       CreationStage = "name"
	StageAge        CreationStage = "age"
	StageGender     CreationStage = "gender"
	StageBackground CreationStage = "background"
	StageComplete   CreationStage = ""
)

// backgroundBonus - стартовый бонус биографии.
type backgroundBonus struct {
	Stats  StatDelta
	Skills map[string]int
	Money  int
	Bank   int
}

var backgroundBonuses = map[string]backgroundBonus{
	"athletic": {
		Stats:  StatDelta{Health: 10, Energy: 10},
		Skills: map[string]int{"combat": 10},
	},
	"intellectual": {
		Stats:  StatDelta{Mental: 15},
		Skills: map[string]int{"negotiation": 15},
	},
	"streetwise": {
		Stats:  StatDelta{Wanted: -10},
		Skills: map[string]int{"stealth": 15},
	},
	"rich": {
		Money: 2000,
		Bank:  5000,
	},
	"mechanic": {
		Skills: map[string]int{"repair": 20, "driving": 10},
	},
}

// BackgroundNames - допустимые ответы на шаге биографии (для подсказки).
func BackgroundNames() []string {
	return []string{"athletic", "intellectual", "streetwise", "rich", "mechanic"}
}

// AdvanceCreation выполняет один переход машины состояний создания.
// Возвращает текст следующего вопроса (или приветствие по завершении)
// и признак завершения. При невалидном вводе состояние не меняется.
func (p *Player) AdvanceCreation(input string) (reply string, done bool) {
	input = strings.TrimSpace(input)

	switch p.CreationStage {
	case StageName:
		if input == "" {
			return "What is your character's name?", false
		}
		p.CustomName = input
		p.CreationStage = StageAge
		return "How old is " + input + "? (16-99)", false

	case StageAge:
		age, err := strconv.Atoi(input)
		if err != nil || age < 16 || age > 99 {
			return "Please give an age between 16 and 99.", false
		}
		p.Age = age
		p.CreationStage = StageGender
		return "Gender? (male/female)", false

	case StageGender:
		g := strings.ToLower(input)
		if g != "male" && g != "female" {
			return "Please answer: male or female.", false
		}
		p.Gender = g
		p.CreationStage = StageBackground
		return "Pick a background: " + strings.Join(BackgroundNames(), ", "), false

	case StageBackground:
		bg := strings.ToLower(input)
		bonus, ok := backgroundBonuses[bg]
		if !ok {
			return "Unknown background. Options: " + strings.Join(BackgroundNames(), ", "), false
		}
		p.Background = bg
		p.ApplyStats(bonus.Stats)
		for skill, amount := range bonus.Skills {
			p.AddSkillXP(skill, amount)
		}
		p.AddMoney(bonus.Money)
		p.Inventory.Bank += bonus.Bank
		p.CharacterCreated = true
		p.CreationStage = StageComplete
		return p.CustomName + " steps into the streets of Livium. Your story begins.", true
	}

	// Уже создан - переходов нет.
	return "", true
}
