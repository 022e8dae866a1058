package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedModules_DryRun_CatalogoPorDefecto(t *testing.T) {
	out, err := execute(t, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "NOMBRE")
	for _, name := range []string{"Basic", "Auth", "Accounting", "Pos", "CustomerSupport", "Erp"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "49900.00")
}

func TestSeedModules_DryRun_DesdeCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogo.csv")
	csv := "nombre;tier;precio;submodulos\nBásico Plus;Basic;55000;Empresas|Usuarios\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := execute(t, "--dry-run", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Básico Plus")
	assert.Contains(t, out, "55000.00")
	assert.NotContains(t, out, "Accounting")
}

func TestSeedModules_CharsetInvalido(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogo.csv")
	require.NoError(t, os.WriteFile(path, []byte("Basic;Basic;1\n"), 0o600))

	_, err := execute(t, "--dry-run", "--file", path, "--charset", "ebcdic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSeedModules_ArchivoInexistente(t *testing.T) {
	_, err := execute(t, "--dry-run", "--file", filepath.Join(t.TempDir(), "no-existe.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abrir catálogo")
}
