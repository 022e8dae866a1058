package migration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/migration"
)

func TestHTTPClient_Notify_EnviaPayload(t *testing.T) {
	var got migration.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := migration.NewHTTPClient(srv.URL, time.Second)
	err := client.Notify(context.Background(), "company-1", []entity.ModuleType{entity.ModuleTypeAccounting, entity.ModuleTypeBasic})
	require.NoError(t, err)

	assert.Equal(t, "company-1", got.CompanyID)
	assert.Equal(t, []entity.ModuleType{entity.ModuleTypeAccounting, entity.ModuleTypeBasic}, got.ModuleTypes)
}

func TestHTTPClient_Notify_ListaVaciaNoNull(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer srv.Close()

	require.NoError(t, migration.NewHTTPClient(srv.URL, time.Second).Notify(context.Background(), "c", nil))
	assert.JSONEq(t, `[]`, string(raw["module_types"]))
}

func TestHTTPClient_Notify_RespuestaNo2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "esquema bloqueado", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := migration.NewHTTPClient(srv.URL, time.Second).Notify(context.Background(), "c", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "esquema bloqueado")
}

func TestHTTPClient_Notify_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := migration.NewHTTPClient(srv.URL, 50*time.Millisecond).Notify(context.Background(), "c", nil)
	assert.Error(t, err)
}
