package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cohorts/pkg/models"
)

// ReadCSV lit un flux CSV dont la première ligne est l'en-tête ; chaque ligne
// suivante devient un Record nom de colonne → valeur.
func ReadCSV(r io.Reader) ([]models.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		// BOM UTF-8 éventuel (exports Excel)
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	var out []models.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: got %d fields, want %d", line, len(row), len(header))
		}

		rec := make(models.Record, len(header))
		for i, name := range header {
			rec[name] = row[i]
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadCSVFile ouvre et lit un fichier CSV.
func ReadCSVFile(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// CSVFiles lit les clients et les commandes depuis deux fichiers CSV.
type CSVFiles struct {
	CustomersPath string
	OrdersPath    string
}

func (c CSVFiles) Customers(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSVFile(c.CustomersPath)
}

func (c CSVFiles) Orders(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSVFile(c.OrdersPath)
}
