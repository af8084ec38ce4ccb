// Package csvfile imports bank transaction exports in CSV format.
//
// Bank exports vary wildly in column naming, so the importer guesses a
// column mapping from the header row and lets callers override it. Rows
// missing any of the required fields (date, payee, amount) are skipped
// and reported rather than failing the whole import.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/halewood/envl/internal/model"
)

// Field identifies a transaction attribute a CSV column can map to.
type Field string

const (
	FieldDate        Field = "date"
	FieldPayee       Field = "payee"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldType        Field = "type"
	FieldCategory    Field = "category"
)

// RequiredFields must all be mapped for an import to proceed.
var RequiredFields = []Field{FieldDate, FieldPayee, FieldAmount}

// headerHints maps each field to header substrings tried in order.
var headerHints = map[Field][]string{
	FieldDate:        {"date", "time"},
	FieldPayee:       {"payee", "vendor", "merchant"},
	FieldDescription: {"description", "memo", "details"},
	FieldAmount:      {"amount", "total", "subtotal"},
	FieldType:        {"type", "transaction type", "kind"},
	FieldCategory:    {"category", "cat.", "group"},
}

// fieldOrder keeps mapping output deterministic.
var fieldOrder = []Field{FieldDate, FieldPayee, FieldDescription, FieldAmount, FieldType, FieldCategory}

// Mapping associates transaction fields with CSV column indexes.
// A missing key means the field is not mapped.
type Mapping map[Field]int

// Validate ensures all required fields are mapped.
func (m Mapping) Validate() error {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := m[field]; !ok {
			missing = append(missing, string(field))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required columns not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Override sets one field mapping from a "field=Header" spec, matching the
// header case-insensitively.
func (m Mapping) Override(spec string, headers []string) error {
	field, header, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("invalid column override %q, expected field=Header", spec)
	}

	f := Field(strings.ToLower(strings.TrimSpace(field)))
	if _, known := headerHints[f]; !known {
		return fmt.Errorf("unknown field %q in column override", field)
	}

	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(header)) {
			m[f] = i
			return nil
		}
	}
	return fmt.Errorf("no column named %q in the file header", header)
}

// ReadHeader returns the header row of a CSV file.
func ReadHeader(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty or has no column headers")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	return headers, nil
}

// GuessMapping maps header columns to fields by case-insensitive
// substring match. For each field the first matching header wins.
func GuessMapping(headers []string) Mapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	mapping := make(Mapping)
	for _, field := range fieldOrder {
		for _, hint := range headerHints[field] {
			for i, h := range lower {
				if strings.Contains(h, hint) {
					mapping[field] = i
					break
				}
			}
			if _, ok := mapping[field]; ok {
				break
			}
		}
	}
	return mapping
}

// Row is a parsed transaction candidate. CategoryName is the raw category
// text from the file, if any; resolving it against known categories is the
// caller's job.
type Row struct {
	Transaction  model.Transaction
	CategoryName string
}

// Result holds the outcome of parsing a CSV file.
type Result struct {
	Rows []Row

	// SkippedRows counts data rows dropped for missing or unparseable
	// required fields. FirstSkippedLine is the 1-based file line of the
	// first such row, counting the header as line 1.
	SkippedRows      int
	FirstSkippedLine int
}

// Parse reads a CSV export and converts its rows to transactions using the
// given mapping. A nil mapping is guessed from the header.
func Parse(r io.Reader, mapping Mapping) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty or has no column headers")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	if mapping == nil {
		mapping = GuessMapping(headers)
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line++

		row, ok := parseRow(record, mapping)
		if !ok {
			result.SkippedRows++
			if result.FirstSkippedLine == 0 {
				result.FirstSkippedLine = line
			}
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 && result.SkippedRows > 0 {
		return nil, fmt.Errorf("no valid transactions found; check the column mapping")
	}
	return result, nil
}

func parseRow(record []string, mapping Mapping) (Row, bool) {
	get := func(field Field) string {
		idx, ok := mapping[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	payee := get(FieldPayee)
	if payee == "" {
		return Row{}, false
	}

	amount, err := parseAmount(get(FieldAmount))
	if err != nil {
		return Row{}, false
	}

	date, err := parseFlexibleDate(get(FieldDate))
	if err != nil {
		return Row{}, false
	}

	// The sign of the amount is the most reliable signal of direction;
	// a type column is ignored in its favor.
	txnType := model.Debit
	if amount >= 0 {
		txnType = model.Credit
	}

	return Row{
		Transaction: model.Transaction{
			Date:          date,
			Payee:         payee,
			Description:   get(FieldDescription),
			Type:          txnType,
			Amount:        math.Abs(amount),
			PaymentMethod: "Unknown",
		},
		CategoryName: get(FieldCategory),
	}, true
}

// parseAmount strips currency symbols and thousands separators before
// parsing, keeping only digits, the decimal point and the sign.
func parseAmount(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric amount in %q", s)
	}
	return strconv.ParseFloat(cleaned, 64)
}
