// Package importer parses lead CSV files into creation params. The
// header row is matched by name, so column order does not matter, and
// the input may arrive in any of the charsets the encoding package
// detects.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/akozyrev/leadwell/internal/encoding"
	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
)

// Column names recognized in the header row. Title and contact_email
// are required, the rest are optional.
const (
	colTitle     = "title"
	colName      = "contact_name"
	colEmail     = "contact_email"
	colPhone     = "contact_phone"
	colCompany   = "company"
	colSource    = "source"
	colMedium    = "medium"
	colCampaign  = "campaign"
	colEstimated = "estimated_value"
	colPriority  = "priority"
)

// DefaultCurrency is assumed for the estimated_value column.
const DefaultCurrency = "RUB"

// RowError reports a single unparseable data row. Import continues
// past it.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result carries the parsed leads and the rows that were skipped.
type Result struct {
	Leads   []lead.CreateParams
	Skipped []RowError
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the whole file. It fails on a malformed header and
// collects per-row errors for bad data rows instead of aborting.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		params, err := parseRow(cols, row)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		result.Leads = append(result.Leads, params)
	}

	return result, nil
}

type colIndex map[string]int

func mapHeader(header []string) (colIndex, error) {
	cols := make(colIndex)
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}

	for _, required := range []string{colTitle, colEmail} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	return cols, nil
}

func parseRow(cols colIndex, row []string) (lead.CreateParams, error) {
	params := lead.CreateParams{
		Title:        cell(cols, row, colTitle),
		ContactName:  cell(cols, row, colName),
		ContactEmail: cell(cols, row, colEmail),
		ContactPhone: cell(cols, row, colPhone),
		Company:      cell(cols, row, colCompany),
		Source: lead.NewSource(
			cell(cols, row, colSource),
			cell(cols, row, colMedium),
			cell(cols, row, colCampaign),
		),
	}

	if params.Title == "" {
		return lead.CreateParams{}, fmt.Errorf("missing title")
	}

	if params.ContactEmail == "" {
		return lead.CreateParams{}, fmt.Errorf("missing contact_email")
	}

	if s := cell(cols, row, colPriority); s != "" {
		priority, err := lead.ParsePriority(s)
		if err != nil {
			return lead.CreateParams{}, fmt.Errorf("bad priority %q", s)
		}
		params.Priority = priority
	}

	if s := cell(cols, row, colEstimated); s != "" {
		value, err := parseEstimatedValue(s)
		if err != nil {
			return lead.CreateParams{}, fmt.Errorf("bad estimated_value %q", s)
		}
		params.EstimatedValue = value
	}

	return params, nil
}

// parseEstimatedValue accepts "150000", "150000.50" and the comma
// decimal separator common in Russian spreadsheets.
func parseEstimatedValue(s string) (*money.Money, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	m, err := money.Parse(s, DefaultCurrency)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func cell(cols colIndex, row []string, name string) string {
	idx, ok := cols[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
