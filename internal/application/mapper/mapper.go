// Package mapper convierte entidades de dominio a DTOs de respuesta.
package mapper

import (
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// Module convierte un módulo; los submódulos se agregan aparte.
func Module(m *entity.Module) dto.ModuleResponse {
	return dto.ModuleResponse{
		ID:    m.ID,
		Name:  m.Name,
		Type:  string(m.Type),
		Price: m.Price,
	}
}

// Modules convierte una lista de módulos. Nunca devuelve nil.
func Modules(list []*entity.Module) []dto.ModuleResponse {
	out := make([]dto.ModuleResponse, 0, len(list))
	for _, m := range list {
		if m == nil {
			continue
		}
		out = append(out, Module(m))
	}
	return out
}

// ModulesWithSubmodules anida los submódulos bajo su módulo (join por ModuleID).
func ModulesWithSubmodules(list []*entity.Module, subs []*entity.Submodule) []dto.ModuleResponse {
	byModule := make(map[string][]dto.SubmoduleResponse, len(list))
	for _, s := range subs {
		byModule[s.ModuleID] = append(byModule[s.ModuleID], dto.SubmoduleResponse{
			ID:       s.ID,
			ModuleID: s.ModuleID,
			Name:     s.Name,
		})
	}
	out := Modules(list)
	for i := range out {
		out[i].Submodules = byModule[out[i].ID]
	}
	return out
}

// Order convierte la orden, sus líneas, los módulos resueltos y la suscripción (opcional).
func Order(o *entity.Order, details []*entity.OrderDetail, modules []*entity.Module, sub *entity.Subscription) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		CompanyID:   o.CompanyID,
		Status:      o.Status,
		SaleDate:    o.SaleDate,
		TotalAmount: o.TotalAmount,
		Modules:     Modules(modules),
		Details:     make([]dto.OrderDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.OrderDetailResponse{
			ID:       d.ID,
			ModuleID: d.ModuleID,
			Amount:   d.Amount,
		})
	}
	if sub != nil {
		resp.Subscription = Subscription(sub)
	}
	return resp
}

// Subscription convierte una suscripción con sus créditos.
func Subscription(s *entity.Subscription) *dto.SubscriptionResponse {
	resp := &dto.SubscriptionResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		OrderID:   s.OrderID,
		Status:    s.Status,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Credits:   make([]dto.CreditResponse, 0, len(s.Credits)),
	}
	for _, c := range s.Credits {
		resp.Credits = append(resp.Credits, dto.CreditResponse{
			ID:            c.ID,
			ModuleID:      c.ModuleID,
			OrderDetailID: c.OrderDetailID,
			IsActive:      c.IsActive,
			StartDate:     c.StartDate,
			EndDate:       c.EndDate,
		})
	}
	return resp
}
