package models

import "time"

const (
	KindIncome  = "receita"
	KindExpense = "despesa"
)

// Transaction is a financial entry. Kind is usually KindIncome or
// KindExpense but other values are passed through untouched.
type Transaction struct {
	ID             int64     `json:"id"`
	Description    string    `json:"descricao"`
	Value          float64   `json:"valor"`
	Kind           string    `json:"tipo"`
	Category       string    `json:"categoria"`
	Paid           bool      `json:"pago"`
	CompetencyDate time.Time `json:"data_competencia"`
	OwnerID        *int64    `json:"responsavel_id,omitempty"`
}
