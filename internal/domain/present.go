package domain

// TableRow is one row of the weight table in the display unit. Only
// pass-through rows are editable.
type TableRow struct {
	Label        string  `json:"label"`
	Date         string  `json:"date"`
	Weight       float64 `json:"weight"`
	Unit         Unit    `json:"unit"`
	IsAggregated bool    `json:"isAggregated"`
	Editable     bool    `json:"editable"`
	EntryID      int64   `json:"entryId,omitempty"`
}

// ChartPoint is one point handed to the chart renderer.
type ChartPoint struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// PresentTable converts aggregated entries into table rows, keeping order.
func PresentTable(entries []AggregatedEntry, unit Unit) []TableRow {
	rows := make([]TableRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, TableRow{
			Label:        e.Label,
			Date:         e.RepresentativeDate,
			Weight:       DisplayWeight(e.WeightLb, unit),
			Unit:         unit,
			IsAggregated: e.IsAggregated,
			Editable:     !e.IsAggregated,
			EntryID:      e.EntryID,
		})
	}
	return rows
}

// PresentChart converts aggregated entries into chart points in unit.
func PresentChart(entries []AggregatedEntry, unit Unit) []ChartPoint {
	points := make([]ChartPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, ChartPoint{
			Date:   e.RepresentativeDate,
			Label:  e.Label,
			Weight: DisplayWeight(e.WeightLb, unit),
		})
	}
	return points
}
