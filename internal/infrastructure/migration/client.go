// Package migration notifica al servicio externo que prepara el esquema de cada empresa
// según los tiers de módulos que tiene contratados.
package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// Notifier entrega una notificación de forma síncrona. Lo implementa HTTPClient.
type Notifier interface {
	Notify(ctx context.Context, companyID string, moduleTypes []entity.ModuleType) error
}

// Request cuerpo JSON enviado al servicio de migración.
type Request struct {
	CompanyID   string              `json:"company_id"`
	ModuleTypes []entity.ModuleType `json:"module_types"`
}

// HTTPClient implementa Notifier con un POST JSON.
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClient construye el cliente. timeout <= 0 usa 10 s.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Notify envía (companyID, tiers). Cualquier respuesta fuera de 2xx es error.
func (c *HTTPClient) Notify(ctx context.Context, companyID string, moduleTypes []entity.ModuleType) error {
	if moduleTypes == nil {
		moduleTypes = []entity.ModuleType{}
	}
	payload, err := json.Marshal(Request{CompanyID: companyID, ModuleTypes: moduleTypes})
	if err != nil {
		return fmt.Errorf("migration: serializar payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("migration: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("migration: request fallido: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("migration: el servicio respondió %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
