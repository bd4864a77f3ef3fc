package history

import "time"

// Summary holds statistics over the results of a log.
// Every field is zero for an empty log.
type Summary struct {
	Count   int     `json:"total"`
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

// Summarize computes count, average, highest and lowest result.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	s := Summary{
		Count:   len(records),
		Highest: records[0].Result,
		Lowest:  records[0].Result,
	}
	var sum float64
	for _, rec := range records {
		sum += rec.Result
		s.Highest = max(s.Highest, rec.Result)
		s.Lowest = min(s.Lowest, rec.Result)
	}
	s.Average = sum / float64(len(records))
	return s
}

// Point is one bar or vertex of the history chart.
type Point struct {
	ID        string
	Timestamp time.Time
	Value     float64
	// Height is Value relative to the series scale, clamped to [0, 1].
	Height float64
}

// Series is the chart projection of a log: results oldest-first.
type Series struct {
	Points []Point
	// Scale is the value mapped to full height: the largest result, but never below 1.
	Scale float64
}

// Empty reports whether there is nothing to chart.
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// Values returns the raw results in chart order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// ChartSeries converts a most-recent-first log to an oldest-first series.
func ChartSeries(records []Record) Series {
	s := Series{Scale: 1, Points: make([]Point, 0, len(records))}
	for _, rec := range records {
		s.Scale = max(s.Scale, rec.Result)
	}

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		s.Points = append(s.Points, Point{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Value:     rec.Result,
			Height:    min(max(rec.Result/s.Scale, 0), 1),
		})
	}
	return s
}
