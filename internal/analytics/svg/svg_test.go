package svg

import (
	"strings"
	"testing"
)

func TestLineProducesSVG(t *testing.T) {
	out, err := Line(400, 200, []Point{{"Jan 1", 100}, {"Jan 2", 0}, {"Jan 3", 150}}, LineOpts{
		Title:       "Sales Trend",
		Description: "Revenue per day",
		ShowDots:    true,
	})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>") {
		t.Fatalf("expected svg document, got %s", out)
	}
	if !strings.Contains(out, "<path") {
		t.Fatalf("expected path element in svg")
	}
	if got := strings.Count(out, "<circle"); got != 3 {
		t.Fatalf("expected 3 dots, got %d", got)
	}
	if !strings.Contains(out, `aria-labelledby="sales-trend-line-title sales-trend-line-desc"`) {
		t.Fatalf("expected accessibility attributes")
	}
}

func TestBarsEscapesLabels(t *testing.T) {
	out, err := Bars(420, 220, []Point{{"Tea & Coffee", 12}, {"<script>", 3}}, BarOpts{Title: "Top Products", ShowValues: true})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	if got := strings.Count(out, "<rect"); got != 2 {
		t.Fatalf("expected 2 bars, got %d", got)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("label was not escaped")
	}
	if !strings.Contains(out, "Tea &amp; Coffee") {
		t.Fatalf("expected escaped label in output")
	}
}

func TestEmptySeriesRendersPlaceholder(t *testing.T) {
	for name, render := range map[string]func() (string, error){
		"line": func() (string, error) { return Line(0, 0, nil, LineOpts{Title: "Monthly Revenue"}) },
		"bars": func() (string, error) { return Bars(0, 0, nil, BarOpts{Title: "By Category"}) },
	} {
		out, err := render()
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if !strings.Contains(out, "No data") {
			t.Fatalf("%s: expected placeholder, got %s", name, out)
		}
	}
}

func TestViewportTooSmall(t *testing.T) {
	if _, err := Line(40, 40, []Point{{"a", 1}}, LineOpts{Padding: 30}); err == nil {
		t.Fatalf("expected viewport error")
	}
}
