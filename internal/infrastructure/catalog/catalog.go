// Package catalog carga productos y bodegas desde un CSV exportado del ERP.
//
// Formato (separador "," o ";", primera fila de encabezados):
//
//	kind,id,code,name,is_stockable,purchase_price,stock_minimum,stock_alert_threshold,has_expiry,type
//	product,,RIZ-25,Riz brisé 25kg,true,12500,10,25,false,
//	warehouse,,DKR-01,Dépôt Dakar,,,,,,principal
//
// Los archivos guardados desde Excel suelen venir en ISO-8859-1; se detecta y convierte a UTF-8.
package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain/entity"
)

const (
	kindProduct   = "product"
	kindWarehouse = "warehouse"
)

var columns = []string{
	"kind", "id", "code", "name", "is_stockable", "purchase_price",
	"stock_minimum", "stock_alert_threshold", "has_expiry", "type",
}

// Catalog productos y bodegas leídos del archivo.
type Catalog struct {
	Products   []*entity.Product
	Warehouses []*entity.Warehouse
}

// LoadFile lee y parsea un archivo de catálogo.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	return Parse(bytes.NewReader(raw), time.Now())
}

// Parse lee el CSV completo. now se usa como fecha de creación.
func Parse(r io.Reader, now time.Time) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = detectComma(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	c := &Catalog{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		switch strings.ToLower(row("kind")) {
		case kindProduct:
			p, err := parseProduct(row, now)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
			c.Products = append(c.Products, p)
		case kindWarehouse:
			w, err := parseWarehouse(row, now)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
			c.Warehouses = append(c.Warehouses, w)
		case "":
			// fila vacía
		default:
			return nil, fmt.Errorf("línea %d: tipo %q desconocido", line, row("kind"))
		}
	}
	return c, nil
}

func detectComma(raw []byte) rune {
	first := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		first = raw[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"kind", "code", "name"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("encabezado sin columna %q (esperadas: %s)", col, strings.Join(columns, ","))
		}
	}
	return index, nil
}

func parseProduct(row func(string) string, now time.Time) (*entity.Product, error) {
	code := row("code")
	if code == "" || row("name") == "" {
		return nil, fmt.Errorf("producto sin código o nombre")
	}
	price := decimal.Zero
	if s := row("purchase_price"); s != "" {
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil || d.IsNegative() {
			return nil, fmt.Errorf("producto %s: precio de compra inválido %q", code, s)
		}
		price = d
	}
	minimum, err := parseInt(row("stock_minimum"))
	if err != nil {
		return nil, fmt.Errorf("producto %s: stock_minimum: %w", code, err)
	}
	threshold, err := parseInt(row("stock_alert_threshold"))
	if err != nil {
		return nil, fmt.Errorf("producto %s: stock_alert_threshold: %w", code, err)
	}
	if threshold < minimum {
		threshold = minimum
	}
	return &entity.Product{
		ID:                  idFor(row("id"), kindProduct, code),
		Code:                code,
		Name:                row("name"),
		IsStockable:         parseBool(row("is_stockable"), true),
		PurchasePrice:       price,
		StockMinimum:        minimum,
		StockAlertThreshold: threshold,
		HasExpiry:           parseBool(row("has_expiry"), false),
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

func parseWarehouse(row func(string) string, now time.Time) (*entity.Warehouse, error) {
	code := row("code")
	if code == "" || row("name") == "" {
		return nil, fmt.Errorf("bodega sin código o nombre")
	}
	typ := row("type")
	if typ == "" {
		typ = "principal"
	}
	return &entity.Warehouse{
		ID:        idFor(row("id"), kindWarehouse, code),
		Code:      code,
		Name:      row("name"),
		Type:      typ,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// idFor sin id explícito se deriva uno estable del código, así el mismo CSV
// produce los mismos ids en cada carga.
func idFor(explicit, kind, code string) string {
	if explicit != "" {
		return explicit
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+code)).String()
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("valor negativo %d", n)
	}
	return n, nil
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(s) {
	case "true", "1", "si", "sí", "oui", "yes":
		return true
	case "false", "0", "no", "non":
		return false
	}
	return def
}
