package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Phone        string    `json:"telefone,omitempty"`
	CRM          string    `json:"crm,omitempty"`
	Active       bool      `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
