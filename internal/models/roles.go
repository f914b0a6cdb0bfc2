package models

const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)
