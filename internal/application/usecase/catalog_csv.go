package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// ParseCatalogCSV lee un catálogo en CSV separado por ';' (formato de Excel en es-CO):
//
//	nombre;tier;precio;submódulo1|submódulo2
//
// La primera fila se ignora si su segunda columna no es un tier válido (cabecera).
// charset "iso-8859-1"/"latin1" decodifica archivos exportados sin UTF-8; vacío = UTF-8.
func ParseCatalogCSV(r io.Reader, charset string) ([]CatalogEntry, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
	case "iso-8859-1", "iso8859-1", "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("%w: charset %q no soportado", domain.ErrInvalidInput, charset)
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []CatalogEntry
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: línea %d: %v", domain.ErrInvalidInput, line, err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: línea %d: se esperan al menos 3 columnas", domain.ErrInvalidInput, line)
		}
		tier := entity.ModuleType(strings.TrimSpace(rec[1]))
		if !tier.Valid() {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%w: línea %d: tier desconocido %q", domain.ErrInvalidInput, line, tier)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio inválido %q", domain.ErrInvalidInput, line, rec[2])
		}
		entry := CatalogEntry{Name: strings.TrimSpace(rec[0]), Type: tier, Price: price}
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: línea %d: nombre vacío", domain.ErrInvalidInput, line)
		}
		if len(rec) > 3 {
			for _, s := range strings.Split(rec[3], "|") {
				if s = strings.TrimSpace(s); s != "" {
					entry.Submodules = append(entry.Submodules, s)
				}
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
