package svg

import (
	"fmt"
	"strings"
)

// Line renders a line chart over points in order. An empty series renders
// the placeholder chart.
func Line(width, height int, points []Point, opts LineOpts) (string, error) {
	title := fallback(opts.Title, "Line chart")
	if len(points) == 0 {
		return Empty(width, height, title), nil
	}
	f, err := newFrame(width, height, opts.Padding, opts.TickCount, values(points), opts.AxisColor, opts.GridColor)
	if err != nil {
		return "", err
	}
	stroke := fallback(opts.StrokeColor, "#2563eb")
	fill := fallback(opts.FillColor, "rgba(37,99,235,0.12)")

	xs := make([]float64, len(points))
	for i := range points {
		if len(points) == 1 {
			xs[i] = f.padding + f.plotW/2
			continue
		}
		xs[i] = f.padding + float64(i)*f.plotW/float64(len(points)-1)
	}

	var path strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			path.WriteByte(' ')
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], f.y(p.Value))
	}

	var b strings.Builder
	f.open(&b, "line", title, fallback(opts.Description, "Trend data"))
	f.grid(&b)
	area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path.String(), xs[len(xs)-1], f.y(0), xs[0], f.y(0))
	fmt.Fprintf(&b, `<path d="%s" fill="%s" stroke="none" aria-hidden="true"></path>`, area, fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, path.String(), stroke)
	for i, p := range points {
		if opts.ShowDots {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s</title></circle>`, xs[i], f.y(p.Value), stroke, formatTick(p.Value))
		}
		f.label(&b, xs[i], p.Label)
	}
	b.WriteString("</svg>")
	return b.String(), nil
}
