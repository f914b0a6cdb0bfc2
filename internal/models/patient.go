package models

import "time"

// Patient is a person registered for care. TaxID holds the CPF.
type Patient struct {
	ID               int64     `json:"id"`
	Name             string    `json:"nome"`
	Phone            string    `json:"telefone"`
	Email            string    `json:"email,omitempty"`
	TaxID            string    `json:"cpf,omitempty"`
	RegistrationDate time.Time `json:"data_cadastro"`
	OwnerID          *int64    `json:"responsavel_id,omitempty"`
}

// VisibleTo reports whether the patient is unowned or owned by userID.
func (p Patient) VisibleTo(userID int64) bool {
	return p.OwnerID == nil || *p.OwnerID == userID
}
