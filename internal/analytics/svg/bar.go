package svg

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// Bars renders one bar per point. An empty series renders the placeholder
// chart.
func Bars(width, height int, points []Point, opts BarOpts) (string, error) {
	title := fallback(opts.Title, "Bar chart")
	if len(points) == 0 {
		return Empty(width, height, title), nil
	}
	f, err := newFrame(width, height, opts.Padding, opts.TickCount, values(points), opts.AxisColor, opts.GridColor)
	if err != nil {
		return "", err
	}
	color := fallback(opts.Color, "#0ea5e9")
	slot := f.plotW / float64(len(points))
	barW := slot * 0.6

	var b strings.Builder
	f.open(&b, "bar", title, fallback(opts.Description, "Category comparison"))
	f.grid(&b)
	zero := f.y(0)
	for i, p := range points {
		x := f.padding + float64(i)*slot + (slot-barW)/2
		top := math.Min(zero, f.y(p.Value))
		h := math.Abs(zero - f.y(p.Value))
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %s"></rect>`,
			x, top, barW, h, color, html.EscapeString(p.Label), formatTick(p.Value))
		if opts.ShowValues {
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x+barW/2, top-4, f.axisColor, formatTick(p.Value))
		}
		f.label(&b, x+barW/2, p.Label)
	}
	b.WriteString("</svg>")
	return b.String(), nil
}
