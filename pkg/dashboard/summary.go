package dashboard

import (
	"fmt"
	"io"

	"github.com/HatiCode/fwirelay/pkg/fwi"
	"github.com/HatiCode/fwirelay/pkg/history"
)

// WriteSummary writes the summary statistics of a history.
func WriteSummary(w io.Writer, s history.Summary) error {
	if s.Count == 0 {
		_, err := fmt.Fprintln(w, "Total predictions: 0")
		return err
	}

	_, err := fmt.Fprintf(w,
		"Total predictions: %d\nAverage FWI: %.2f (%s)\nHighest FWI: %.2f\nLowest FWI:  %.2f\n",
		s.Count, s.Average, fwi.Classify(s.Average), s.Highest, s.Lowest)
	return err
}

// WriteRecord writes a single prediction with its risk band and advice.
func WriteRecord(w io.Writer, rec history.Record) error {
	band := rec.Band()
	_, err := fmt.Fprintf(w, "FWI: %.2f\nRisk: %s\n%s\n%s\n",
		rec.Result, band, band.Description(), band.Advice())
	return err
}
