package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses CSV results sheets.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads rows of match_id, score_a, score_b. An optional header row is
// skipped; empty rows are ignored.
func (p *CSVParser) Parse(data []byte) ([]ResultRow, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	var rows []ResultRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}

		row, err := parseRow(line, record)
		if errors.Is(err, errHeader) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file has no result rows")
	}
	return rows, nil
}
