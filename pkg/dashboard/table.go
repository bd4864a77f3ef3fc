// Package dashboard renders a prediction history for the terminal or as an image:
// a table of inputs and results, a summary block, and a bar chart of results.
package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/HatiCode/fwirelay/pkg/history"
)

// EmptyHistoryMessage is printed instead of a table when there are no records.
const EmptyHistoryMessage = "No predictions yet."

var tableHeader = []string{"#", "Temp", "RH", "Ws", "Rain", "FFMC", "DMC", "ISI", "Class", "Region", "FWI", "Risk"}

// WriteTable writes one row per record, most recent first, numbered from 1.
func WriteTable(w io.Writer, records []history.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, EmptyHistoryMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow(tw, tableHeader)
	for i, rec := range records {
		in := rec.Input
		writeRow(tw, []string{
			strconv.Itoa(i + 1),
			num(in.Temperature),
			num(in.RH),
			num(in.Ws),
			num(in.Rain),
			num(in.FFMC),
			num(in.DMC),
			num(in.ISI),
			num(in.Classes),
			in.Region.String(),
			strconv.FormatFloat(rec.Result, 'f', 2, 64),
			rec.Band().String(),
		})
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
