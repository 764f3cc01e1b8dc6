package canvasrenderer

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/pathtext/dsl"
	"github.com/ByLCY/pathtext/scene"
	"github.com/ByLCY/pathtext/textpath"
)

const arcScene = `doc Arc v1 {
  meta { title: "Arc" author: "pathtext" }
  resources {
    font Body { src: "embed:Go-Regular" }
  }
  page 60mm 30mm background #ffffff {
    polyline color #888888 { path: [[5, 25], [55, 25]] }
    textpath size 5mm align center guide #dddddd {
      path: [[5, 25], [30, 5], [55, 25]]
      "Curved"
    }
  }
}`

func buildWith(t *testing.T, r *Renderer, src string) *scene.Result {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := scene.Build(doc, nil, scene.BuildOptions{Measurer: r})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	return res
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer("")
	res := buildWith(t, r, arcScene)
	tp := res.Pages[0].TextPaths[0]
	if len(tp.Placements) != len("Curved") {
		t.Fatalf("expected %d placements, got %d", len("Curved"), len(tp.Placements))
	}
	if tp.TextWidth <= 0 || tp.TextWidth > tp.PathLength {
		t.Fatalf("unexpected text width %g for path length %g", tp.TextWidth, tp.PathLength)
	}

	out, err := r.Render(res)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestRenderSVG(t *testing.T) {
	r := NewRendererWithOptions(Options{Format: FormatSVG})
	out, err := r.Render(buildWith(t, r, arcScene))
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(string(out), "<svg") {
		t.Fatalf("output is not an SVG document")
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewRendererWithOptions(Options{Format: FormatPNG, DPMM: 4})
	out, err := r.Render(buildWith(t, r, arcScene))
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if math.Abs(float64(b.Dx())-240) > 1 || math.Abs(float64(b.Dy())-120) > 1 {
		t.Fatalf("unexpected image size %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderSkipsInvalidPlacements(t *testing.T) {
	r := NewRenderer("")
	res := &scene.Result{
		Resources: scene.ResourceSet{Fonts: map[string]scene.FontResource{
			"Body": {Name: "Body", Src: "embed:Go-Regular"},
		}},
		Pages: []scene.Page{{
			Width:  20,
			Height: 20,
			TextPaths: []scene.TextPath{{
				Font:     "Body",
				FontSize: 4,
				Placements: []textpath.Placement{
					{Char: "a", X: math.NaN(), Y: math.NaN(), Angle: math.NaN()},
					{Char: "b", X: 10, Y: 10},
				},
			}},
		}},
	}
	if _, err := r.Render(res); err != nil {
		t.Fatalf("render error: %v", err)
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&scene.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPDF, "PDF": FormatPDF, "svg": FormatSVG, " png ": FormatPNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("tiff"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
