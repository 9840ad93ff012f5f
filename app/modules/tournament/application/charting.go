package tournamentservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
)

// chartMaxBars caps the standings chart to the leading entries so long pools
// stay readable.
const chartMaxBars = 20

// RenderStandingsChart produces a PNG bar chart of wins per participant, in
// standings order.
func (s *TournamentService) RenderStandingsChart(ctx context.Context, tournamentID uuid.UUID) ([]byte, error) {
	standings, err := s.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(standings) == 0 {
		return nil, fmt.Errorf("tournament %s has no standings to chart", tournamentID)
	}

	if len(standings) > chartMaxBars {
		standings = standings[:chartMaxBars]
	}

	bars := make([]chart.Value, len(standings))
	for i, entry := range standings {
		bars[i] = chart.Value{
			Label: entry.Username,
			Value: float64(entry.Wins),
		}
	}

	graph := chart.BarChart{
		Title:    "Standings",
		Width:    1024,
		Height:   512,
		BarWidth: 30,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name: "Wins",
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buffer.Bytes(), nil
}
