package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/HatiCode/fwirelay/pkg/history"
)

// NoDataMessage is drawn in place of a chart for an empty series.
const NoDataMessage = "No data to chart"

var (
	barColor       = drawing.ColorFromHex("60a5fa")
	barEdgeColor   = drawing.ColorFromHex("a78bfa")
	noDataColor    = drawing.ColorFromHex("94a3b8")
	textChartBlock = "█"
)

// ChartRenderer draws a history series.
type ChartRenderer interface {
	Render(w io.Writer, s history.Series) error
}

// TextChart draws one horizontal bar per point, oldest first.
type TextChart struct {
	// Width is the length of a full-scale bar in characters.
	Width int
}

// Render implements ChartRenderer.
func (c TextChart) Render(w io.Writer, s history.Series) error {
	if s.Empty() {
		_, err := fmt.Fprintln(w, NoDataMessage)
		return err
	}

	width := c.Width
	if width <= 0 {
		width = 40
	}

	for i, p := range s.Points {
		n := int(p.Height*float64(width) + 0.5)
		bar := strings.Repeat(textChartBlock, n) + strings.Repeat(" ", width-n)
		if _, err := fmt.Fprintf(w, "%3d %s %7.2f\n", i+1, bar, p.Value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "    scale 0-%g\n", s.Scale)
	return err
}

// ImageFormat selects the encoding of an ImageChart.
type ImageFormat string

// Supported image formats.
const (
	FormatSVG ImageFormat = "svg"
	FormatPNG ImageFormat = "png"
)

// ParseImageFormat accepts "svg" or "png", case-insensitively.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch f := ImageFormat(strings.ToLower(s)); f {
	case FormatSVG, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported image format %q (want svg or png)", s)
}

// ImageChart draws a bar chart with go-chart.
type ImageChart struct {
	Format ImageFormat
	Width  int
	Height int
	Title  string
}

// Render implements ChartRenderer.
func (c ImageChart) Render(w io.Writer, s history.Series) error {
	provider, err := c.provider()
	if err != nil {
		return err
	}
	width, height := c.size()

	if s.Empty() {
		return renderNoData(w, provider, width, height)
	}

	bars := make([]chart.Value, len(s.Points))
	minVal := 0.0
	for i, p := range s.Points {
		minVal = min(minVal, p.Value)
		bars[i] = chart.Value{
			Label: strconv.Itoa(i + 1),
			Value: p.Value,
			Style: chart.Style{
				FillColor:   barColor,
				StrokeColor: barEdgeColor,
				StrokeWidth: 1,
			},
		}
	}

	barWidth, spacing := barLayout(width, len(bars))
	bc := chart.BarChart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 28, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{StrokeColor: drawing.ColorFromHex("e5e7eb"), StrokeWidth: 1},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: minVal, Max: s.Scale},
		},
		Bars: bars,
	}

	if err := bc.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func (c ImageChart) provider() (chart.RendererProvider, error) {
	switch c.Format {
	case FormatSVG, "":
		return chart.SVG, nil
	case FormatPNG:
		return chart.PNG, nil
	}
	return nil, fmt.Errorf("unsupported image format %q", c.Format)
}

func (c ImageChart) size() (int, int) {
	width, height := c.Width, c.Height
	if width <= 0 {
		width = 480
	}
	if height <= 0 {
		height = 200
	}
	return width, height
}

// barLayout splits the plot width evenly between n bars. go-chart substitutes its
// own defaults for zero values, so both results are at least 1.
func barLayout(width, n int) (barWidth, spacing int) {
	slot := max(6, (width-80)/n)
	barWidth = max(3, min(60, slot*2/3))
	spacing = max(1, slot-barWidth)
	return barWidth, spacing
}

func renderNoData(w io.Writer, provider chart.RendererProvider, width, height int) error {
	r, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	if font == nil {
		return errors.New("load font: no default font")
	}

	r.SetFont(font)
	r.SetFontSize(14)
	r.SetFontColor(noDataColor)
	r.Text(NoDataMessage, 10, 24)
	return r.Save(w)
}
