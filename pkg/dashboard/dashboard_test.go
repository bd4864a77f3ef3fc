package dashboard

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/HatiCode/fwirelay/pkg/fwi"
	"github.com/HatiCode/fwirelay/pkg/history"
)

func record(id string, result float64, region fwi.Region) history.Record {
	return history.Record{
		ID:        id,
		Timestamp: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		Input: fwi.Input{
			Temperature: 32, RH: 45, Ws: 14, Rain: 0.2,
			FFMC: 88.1, DMC: 12.5, ISI: 7.4, Classes: 1, Region: region,
		},
		Result: result,
	}
}

func TestWriteTable(t *testing.T) {
	records := []history.Record{
		record("b", 31.5, fwi.RegionSidiBelAbbes),
		record("a", 2, fwi.RegionBejaia),
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, records); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}
	for _, col := range tableHeader {
		if !strings.Contains(lines[0], col) {
			t.Errorf("header missing %q: %q", col, lines[0])
		}
	}

	first := strings.Fields(lines[1])
	if first[0] != "1" || first[len(first)-1] != "EXTREME" || first[len(first)-2] != "31.50" {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[1], "Sidi-Bel Abbes") {
		t.Errorf("first row missing region name: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2") || !strings.HasSuffix(lines[2], "LOW") || !strings.Contains(lines[2], "Bejaia") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != EmptyHistoryMessage {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	s := history.Summary{Count: 3, Average: 16, Highest: 31.5, Lowest: 2}
	if err := WriteSummary(&buf, s); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Total predictions: 3", "Average FWI: 16.00 (HIGH)", "Highest FWI: 31.50", "2.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteSummary(&buf, history.Summary{}); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "Total predictions: 0" {
		t.Errorf("empty summary = %q", buf.String())
	}
}

func TestWriteRecord(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecord(&buf, record("x", 7.25, fwi.RegionBejaia)); err != nil {
		t.Fatalf("WriteRecord() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FWI: 7.25") || !strings.Contains(out, "Risk: MEDIUM") {
		t.Errorf("record output = %q", out)
	}
	if !strings.Contains(out, fwi.BandMedium.Advice()) {
		t.Errorf("record output missing advice: %q", out)
	}
}

func sampleSeries() history.Series {
	return history.ChartSeries([]history.Record{
		record("c", 10, fwi.RegionBejaia),
		record("b", 20, fwi.RegionBejaia),
		record("a", 5, fwi.RegionBejaia),
	})
}

func TestTextChart(t *testing.T) {
	var buf bytes.Buffer
	if err := (TextChart{Width: 10}).Render(&buf, sampleSeries()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}

	wantBars := []int{3, 10, 5}
	wantValues := []string{"5.00", "20.00", "10.00"}
	for i, line := range lines[:3] {
		if got := strings.Count(line, textChartBlock); got != wantBars[i] {
			t.Errorf("line %d has %d blocks, want %d: %q", i, got, wantBars[i], line)
		}
		if !strings.HasSuffix(line, wantValues[i]) {
			t.Errorf("line %d = %q, want value %s", i, line, wantValues[i])
		}
	}
	if !strings.Contains(lines[3], "scale 0-20") {
		t.Errorf("scale line = %q", lines[3])
	}
}

func TestTextChart_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (TextChart{}).Render(&buf, history.ChartSeries(nil)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != NoDataMessage {
		t.Errorf("got %q", buf.String())
	}
}

func TestImageChart(t *testing.T) {
	tests := []struct {
		name   string
		format ImageFormat
		series history.Series
		check  func(t *testing.T, out []byte)
	}{
		{
			name:   "svg bars",
			format: FormatSVG,
			series: sampleSeries(),
			check: func(t *testing.T, out []byte) {
				if !bytes.Contains(out, []byte("<svg")) {
					t.Errorf("output is not SVG: %.80q", out)
				}
			},
		},
		{
			name:   "svg placeholder",
			format: FormatSVG,
			series: history.ChartSeries(nil),
			check: func(t *testing.T, out []byte) {
				if !bytes.Contains(out, []byte(NoDataMessage)) {
					t.Errorf("placeholder text missing: %.200q", out)
				}
			},
		},
		{
			name:   "png bars",
			format: FormatPNG,
			series: sampleSeries(),
			check: func(t *testing.T, out []byte) {
				if !bytes.HasPrefix(out, []byte("\x89PNG")) {
					t.Errorf("output is not PNG: %.8q", out)
				}
			},
		},
		{
			name:   "png placeholder",
			format: FormatPNG,
			series: history.ChartSeries(nil),
			check: func(t *testing.T, out []byte) {
				if !bytes.HasPrefix(out, []byte("\x89PNG")) {
					t.Errorf("output is not PNG: %.8q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := ImageChart{Format: tt.format, Title: "FWI history"}
			if err := c.Render(&buf, tt.series); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			tt.check(t, buf.Bytes())
		})
	}
}

func TestImageChart_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := (ImageChart{Format: "gif"}).Render(&buf, sampleSeries()); err == nil {
		t.Error("expected error for gif")
	}
}

func TestParseImageFormat(t *testing.T) {
	for in, want := range map[string]ImageFormat{"svg": FormatSVG, "PNG": FormatPNG} {
		got, err := ParseImageFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseImageFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseImageFormat("jpeg"); err == nil {
		t.Error("expected error for jpeg")
	}
}

func TestBarLayout(t *testing.T) {
	for _, n := range []int{1, 3, 50, 500} {
		w, s := barLayout(480, n)
		if w < 1 || s < 1 {
			t.Errorf("barLayout(480, %d) = %d, %d", n, w, s)
		}
	}
}
