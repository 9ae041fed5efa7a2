package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"stockperf/internal/domain"
)

// LoadUniverse reads a company universe CSV. The header must contain
// "Symbol" and "Industry" columns; "Company Name" is optional. Column order
// is taken from the header. Rows with an empty symbol are skipped.
func LoadUniverse(path string) ([]domain.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	companies, err := ReadUniverse(f)
	if err != nil {
		return nil, fmt.Errorf("reading universe %s: %w", path, err)
	}
	slog.Info("loaded company universe", "file", path, "companies", len(companies))
	return companies, nil
}

// ReadUniverse parses universe CSV rows from r.
func ReadUniverse(r io.Reader) ([]domain.Company, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty universe file")
		}
		return nil, err
	}

	symIdx, indIdx, nameIdx := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "symbol":
			symIdx = i
		case "industry":
			indIdx = i
		case "company name", "name":
			nameIdx = i
		}
	}
	if symIdx < 0 || indIdx < 0 {
		return nil, fmt.Errorf("universe header %v lacks Symbol/Industry columns", header)
	}

	var companies []domain.Company
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if symIdx >= len(rec) || indIdx >= len(rec) {
			continue
		}
		c := domain.Company{
			Symbol:   strings.ToUpper(strings.TrimSpace(rec[symIdx])),
			Industry: strings.TrimSpace(rec[indIdx]),
		}
		if c.Symbol == "" {
			continue
		}
		if nameIdx >= 0 && nameIdx < len(rec) {
			c.Name = strings.TrimSpace(rec[nameIdx])
		}
		companies = append(companies, c)
	}
	return companies, nil
}
