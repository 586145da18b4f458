package catalog_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/catalog"
)

const sample = `kind,id,code,name,is_stockable,purchase_price,stock_minimum,stock_alert_threshold,has_expiry,type
product,,RIZ-25,Riz brisé 25kg,true,12500,10,25,false,
product,p-lait,LAIT-1,Lait en poudre,oui,2300,5,3,true,
product,,SRV-LIV,Livraison,false,0,,,,
warehouse,,DKR-01,Dépôt Dakar,,,,,,
warehouse,w-ths,THS-01,Magasin Thiès,,,,,,tienda
`

func TestParse_ProductosYBodegas(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := catalog.Parse(strings.NewReader(sample), now)
	require.NoError(t, err)
	require.Len(t, c.Products, 3)
	require.Len(t, c.Warehouses, 2)

	riz := c.Products[0]
	assert.Equal(t, "RIZ-25", riz.Code)
	assert.Equal(t, "Riz brisé 25kg", riz.Name)
	assert.True(t, riz.IsStockable)
	assert.Equal(t, "12500", riz.PurchasePrice.String())
	assert.Equal(t, int64(10), riz.StockMinimum)
	assert.Equal(t, int64(25), riz.StockAlertThreshold)
	assert.NotEmpty(t, riz.ID)
	assert.Equal(t, now, riz.CreatedAt)

	lait := c.Products[1]
	assert.Equal(t, "p-lait", lait.ID)
	assert.True(t, lait.HasExpiry)
	assert.Equal(t, int64(5), lait.StockAlertThreshold, "el umbral nunca queda por debajo del mínimo")

	assert.False(t, c.Products[2].IsStockable)

	assert.Equal(t, "principal", c.Warehouses[0].Type)
	assert.True(t, c.Warehouses[0].IsActive)
	assert.Equal(t, "w-ths", c.Warehouses[1].ID)
	assert.Equal(t, "tienda", c.Warehouses[1].Type)
}

func TestParse_IDsEstables(t *testing.T) {
	a, err := catalog.Parse(strings.NewReader(sample), time.Now())
	require.NoError(t, err)
	b, err := catalog.Parse(strings.NewReader(sample), time.Now())
	require.NoError(t, err)
	assert.Equal(t, a.Products[0].ID, b.Products[0].ID)
	assert.NotEqual(t, a.Products[0].ID, a.Warehouses[0].ID)
}

func TestParse_Latin1ConPuntoYComa(t *testing.T) {
	src := "kind;code;name;purchase_price\nproduct;CAFE;Café Touba;1500,5\n"
	enc, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	c, err := catalog.Parse(strings.NewReader(enc), time.Now())
	require.NoError(t, err)
	require.Len(t, c.Products, 1)
	assert.Equal(t, "Café Touba", c.Products[0].Name)
	assert.Equal(t, "1500.5", c.Products[0].PurchasePrice.String())
}

func TestParse_Errores(t *testing.T) {
	cases := map[string]string{
		"sin columna code": "kind,name\nproduct,x\n",
		"tipo desconocido": "kind,code,name\nclient,C1,x\n",
		"precio negativo":  "kind,code,name,purchase_price\nproduct,P1,x,-5\n",
		"mínimo inválido":  "kind,code,name,stock_minimum\nproduct,P1,x,abc\n",
		"sin nombre":       "kind,code,name\nwarehouse,W1,\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse(strings.NewReader(src), time.Now())
			assert.Error(t, err)
		})
	}
}

func TestCatalog_WriteSQL(t *testing.T) {
	c, err := catalog.Parse(strings.NewReader(sample+"product,,QT,L'eau,true,100,0,0,false,\n"), time.Now())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteSQL(&buf))
	out := buf.String()
	assert.Contains(t, out, "INSERT INTO warehouses")
	assert.Contains(t, out, "INSERT INTO products")
	assert.Contains(t, out, "'L''eau'")
	assert.Equal(t, 2, strings.Count(out, "ON CONFLICT (code)"))
}
