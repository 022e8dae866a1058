package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// OrderReceipt datos que necesita el generador para el comprobante de la orden.
type OrderReceipt struct {
	Order        *entity.Order
	Company      *entity.Company
	Lines        []ReceiptLine
	Subscription *entity.Subscription // nil si la orden no tiene suscripción registrada
}

// ReceiptLine línea del comprobante: detalle + módulo resuelto.
type ReceiptLine struct {
	entity.OrderDetail
	ModuleName string
	ModuleType entity.ModuleType
}

// PDFUseCase genera el comprobante PDF de una orden.
type PDFUseCase struct {
	orders      *CreateOrderUseCase
	companyRepo repository.CompanyRepository
	generator   OrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(orders *CreateOrderUseCase, companyRepo repository.CompanyRepository, generator OrderPDFGenerator) *PDFUseCase {
	return &PDFUseCase{orders: orders, companyRepo: companyRepo, generator: generator}
}

// DownloadOrderPDF carga la orden (mismas reglas de acceso que GetOrder) y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)   si todo sale bien.
//   - domain.ErrPermissionDenied  si el usuario no pertenece a la empresa.
//   - domain.ErrNotFound          si la orden no existe.
//   - domain.ErrForbidden         si la orden es de otra empresa.
func (uc *PDFUseCase) DownloadOrderPDF(ctx context.Context, userID, companyID, orderID string) (pdfBytes []byte, filename string, err error) {
	order, details, modules, sub, err := uc.orders.loadOrder(ctx, userID, companyID, orderID)
	if err != nil {
		return nil, "", err
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}

	byID := make(map[string]*entity.Module, len(modules))
	for _, m := range modules {
		byID[m.ID] = m
	}
	lines := make([]ReceiptLine, 0, len(details))
	for _, d := range details {
		line := ReceiptLine{OrderDetail: *d, ModuleName: "Módulo " + d.ModuleID}
		if m, ok := byID[d.ModuleID]; ok {
			line.ModuleName = m.Name
			line.ModuleType = m.Type
		}
		lines = append(lines, line)
	}

	pdfBytes, err = uc.generator.GenerateOrderPDF(ctx, &OrderReceipt{
		Order:        order,
		Company:      company,
		Lines:        lines,
		Subscription: sub,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden_%s.pdf", order.ID), nil
}
