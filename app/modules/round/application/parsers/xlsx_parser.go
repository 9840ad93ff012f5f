package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser parses XLSX results sheets.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet as rows of match_id, score_a, score_b.
func (p *XLSXParser) Parse(data []byte) ([]ResultRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "zip: not a valid zip file") {
			return nil, fmt.Errorf("failed to open XLSX file: %w. (Hint: if this is a CSV file, give it a .csv extension)", err)
		}
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	sheetName := sheets[0]
	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	var rows []ResultRow
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		empty := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		row, err := parseRow(i+1, record)
		if errors.Is(err, errHeader) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no result rows", sheetName)
	}
	return rows, nil
}
