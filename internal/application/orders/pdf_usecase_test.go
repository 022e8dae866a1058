package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/orders"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// captureGenerator guarda el comprobante recibido y devuelve un PDF mínimo.
type captureGenerator struct {
	receipt *orders.OrderReceipt
}

func (g *captureGenerator) GenerateOrderPDF(_ context.Context, receipt *orders.OrderReceipt) ([]byte, error) {
	g.receipt = receipt
	return []byte("%PDF-1.4"), nil
}

func TestDownloadOrderPDF_ArmaComprobante(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.store.Companies().Create(ctx, &entity.Company{
		ID: testCompanyID, Name: "Ferretería El Tornillo", NIT: "900123456", Status: entity.CompanyStatusActive,
	}))
	created, err := f.uc.CreateOrder(ctx, testUserID, testCompanyID,
		dto.CreateOrderRequest{ModuleIDs: []string{accountingID}})
	require.NoError(t, err)

	gen := &captureGenerator{}
	pdfUC := orders.NewPDFUseCase(f.uc, f.store.Companies(), gen)

	pdf, filename, err := pdfUC.DownloadOrderPDF(ctx, testUserID, testCompanyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Equal(t, "orden_"+created.ID+".pdf", filename)

	require.NotNil(t, gen.receipt)
	assert.Equal(t, "Ferretería El Tornillo", gen.receipt.Company.Name)
	require.NotNil(t, gen.receipt.Subscription)
	names := make([]string, 0, len(gen.receipt.Lines))
	for _, l := range gen.receipt.Lines {
		names = append(names, l.ModuleName)
	}
	assert.ElementsMatch(t, []string{"Accounting", "Basic"}, names)
}

func TestDownloadOrderPDF_EmpresaInexistente_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created, err := f.uc.CreateOrder(ctx, testUserID, testCompanyID,
		dto.CreateOrderRequest{ModuleIDs: []string{erpID}})
	require.NoError(t, err)

	pdfUC := orders.NewPDFUseCase(f.uc, f.store.Companies(), &captureGenerator{})
	_, _, err = pdfUC.DownloadOrderPDF(ctx, testUserID, testCompanyID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
