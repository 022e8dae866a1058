package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/orders"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/pdf"
)

func sampleReceipt() *orders.OrderReceipt {
	start := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)
	return &orders.OrderReceipt{
		Order: &entity.Order{
			ID:          "3f1c2a9e-7d4b-4a57-9c0e-5b8f6d2e1a00",
			CompanyID:   "c",
			SaleDate:    start,
			Status:      entity.OrderStatusApproved,
			TotalAmount: decimal.NewFromInt(139800),
		},
		Company: &entity.Company{Name: "Ferretería El Tornillo S.A.S.", NIT: "900123456-7"},
		Lines: []orders.ReceiptLine{
			{OrderDetail: entity.OrderDetail{ID: "d1", ModuleID: "m1", Amount: decimal.NewFromInt(89900)}, ModuleName: "Accounting", ModuleType: entity.ModuleTypeAccounting},
			{OrderDetail: entity.OrderDetail{ID: "d2", ModuleID: "m2", Amount: decimal.NewFromInt(49900)}, ModuleName: "Basic", ModuleType: entity.ModuleTypeBasic},
		},
		Subscription: &entity.Subscription{
			ID: "s", Status: entity.SubscriptionStatusActive, StartDate: start, EndDate: time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC),
		},
	}
}

func TestGenerateOrderPDF_GeneraDocumento(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator().GenerateOrderPDF(context.Background(), sampleReceipt())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "la salida debe ser un PDF")
}

func TestGenerateOrderPDF_SinSuscripcion(t *testing.T) {
	receipt := sampleReceipt()
	receipt.Subscription = nil

	out, err := pdf.NewMarotoPDFGenerator().GenerateOrderPDF(context.Background(), receipt)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateOrderPDF_ComprobanteIncompleto(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateOrderPDF(context.Background(), &orders.OrderReceipt{})
	assert.Error(t, err)
}
