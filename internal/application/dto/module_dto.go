package dto

import "github.com/shopspring/decimal"

// ModuleResponse módulo del catálogo o módulo activo de un usuario.
// Submodules solo se llena cuando se pide explícitamente (?submodules=true).
type ModuleResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Price      decimal.Decimal     `json:"price"`
	Submodules []SubmoduleResponse `json:"submodules,omitempty"`
}

// SubmoduleResponse funcionalidad dependiente de un módulo.
type SubmoduleResponse struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Name     string `json:"name"`
}

// ModuleListResponse lista de módulos; Items nunca es null en el JSON.
type ModuleListResponse struct {
	Items []ModuleResponse `json:"items"`
}
