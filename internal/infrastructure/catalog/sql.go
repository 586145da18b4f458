package catalog

import (
	"fmt"
	"io"
	"strings"
)

// WriteSQL script idempotente para poblar products y warehouses en PostgreSQL.
func (c *Catalog) WriteSQL(w io.Writer) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial del libro de existencias\n\n")

	if len(c.Warehouses) > 0 {
		b.WriteString("INSERT INTO warehouses (id, code, name, type, is_active) VALUES\n")
		for i, wh := range c.Warehouses {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', %t)", wh.ID, escapeSQL(wh.Code), escapeSQL(wh.Name), escapeSQL(wh.Type), wh.IsActive)
			b.WriteString(separator(i, len(c.Warehouses)))
		}
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type;\n\n")
	}

	if len(c.Products) > 0 {
		b.WriteString("INSERT INTO products (id, code, name, is_stockable, purchase_price, stock_minimum, stock_alert_threshold, has_expiry) VALUES\n")
		for i, p := range c.Products {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', %t, %s, %d, %d, %t)",
				p.ID, escapeSQL(p.Code), escapeSQL(p.Name), p.IsStockable, p.PurchasePrice.String(),
				p.StockMinimum, p.StockAlertThreshold, p.HasExpiry)
			b.WriteString(separator(i, len(c.Products)))
		}
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, purchase_price = EXCLUDED.purchase_price,\n")
		b.WriteString("  stock_minimum = EXCLUDED.stock_minimum, stock_alert_threshold = EXCLUDED.stock_alert_threshold;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func separator(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
