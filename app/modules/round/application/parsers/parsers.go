package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ResultRow is one parsed score line from an uploaded results sheet.
type ResultRow struct {
	Line    int
	MatchID uuid.UUID
	ScoreA  int
	ScoreB  int
}

// Parser defines the interface for results-sheet parsers.
type Parser interface {
	Parse(data []byte) ([]ResultRow, error)
}

// ParserFactory defines the interface for creating parsers.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// getFileExtension extracts the file extension from a filename.
func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}

// parseRow converts one record of [match_id, score_a, score_b] cells. A
// header row (first cell not a UUID, line 1) is reported via errHeader so
// callers can skip it.
var errHeader = fmt.Errorf("header row")

func parseRow(line int, cells []string) (ResultRow, error) {
	if len(cells) < 3 {
		return ResultRow{}, fmt.Errorf("line %d: expected match_id, score_a, score_b, got %d columns", line, len(cells))
	}

	matchID, err := uuid.Parse(strings.TrimSpace(cells[0]))
	if err != nil {
		if line == 1 {
			return ResultRow{}, errHeader
		}
		return ResultRow{}, fmt.Errorf("line %d: invalid match id %q", line, cells[0])
	}

	scoreA, err := strconv.Atoi(strings.TrimSpace(cells[1]))
	if err != nil {
		return ResultRow{}, fmt.Errorf("line %d: invalid score_a %q", line, cells[1])
	}
	scoreB, err := strconv.Atoi(strings.TrimSpace(cells[2]))
	if err != nil {
		return ResultRow{}, fmt.Errorf("line %d: invalid score_b %q", line, cells[2])
	}

	return ResultRow{Line: line, MatchID: matchID, ScoreA: scoreA, ScoreB: scoreB}, nil
}
