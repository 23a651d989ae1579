package domain

import "fmt"

// Таксономия отказов (см. также DESIGN.md):
//   - ValidationError: неизвестный id, кривой аргумент. Мутации нет.
//   - PolicyError: правило игры не позволяет (нет денег, нет лицензии).
//     Мутации нет, у отказа есть машинный код причины.
//   - Случайный неблагоприятный исход (провал кражи, авария) ошибкой НЕ
//     является - это валидная ветка Consequence.
//   - Недоступность коллаборатора (классификатор, нарратор) до пользователя
//     не доходит: подсистема обязана деградировать на fallback.

// Коды причин PolicyError.
const (
	ReasonNoLicense         = "no_license"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonMissingSkill      = "missing_skill"
	ReasonLowCredit         = "low_credit_score"
	ReasonLoanTooLarge      = "loan_too_large"
	ReasonDuplicateRequest  = "duplicate_request"
	ReasonNoPendingRequest  = "no_pending_request"
	ReasonDifferentCity     = "different_city"
	ReasonAlreadyPregnant   = "already_pregnant"
	ReasonNotEligible       = "not_eligible"
	ReasonNoUnnamedChild    = "no_unnamed_child"
	ReasonWrongCity         = "wrong_city"
	ReasonDead              = "dead"
)

// ValidationError - вход не прошел проверку (неизвестный район, работа, сумма).
type ValidationError struct {
	What string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.What
}

// NewValidationError - конструктор с форматированием.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{What: fmt.Sprintf(format, args...)}
}

// PolicyError - действие запрещено правилами игры.
// Reason - машинный код, Msg - готовый текст для игрока.
type PolicyError struct {
	Reason string
	Msg    string
}

func (e *PolicyError) Error() string {
	return e.Reason + ": " + e.Msg
}

// NewPolicyError - конструктор с форматированием человеческой причины.
func NewPolicyError(reason, format string, args ...any) *PolicyError {
	return &PolicyError{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// ReasonOf достает машинный код причины из ошибки, если он есть.
func ReasonOf(err error) string {
	if pe, ok := err.(*PolicyError); ok {
		return pe.Reason
	}
	return ""
}
