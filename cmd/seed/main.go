// seed genera el script SQL que puebla products y warehouses a partir de un
// catálogo CSV exportado del ERP (UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/seed_catalog.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Libasse27/erp-senegal-sub002/internal/infrastructure/catalog"
)

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	c, err := catalog.LoadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catálogo: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := c.WriteSQL(out); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d bodegas, %d productos\n", outPath, len(c.Warehouses), len(c.Products))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
