package canvasrenderer

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/chordbook/layout"
	"github.com/ByLCY/chordbook/renderer"
	"github.com/ByLCY/chordbook/song"
)

var regular = layout.FontResource{Name: layout.FontRegular, Src: "embed:Regular"}

func TestTextWidthScalesWithSize(t *testing.T) {
	r := New(renderer.Assets{})
	size := 10 * layout.PtToMm
	w1, err := r.TextWidth("Hello", regular, size)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if w1 <= 0 {
		t.Fatalf("invalid width %g", w1)
	}
	w2, err := r.TextWidth("Hello", regular, 2*size)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if math.Abs(w2-2*w1) > 1e-6 {
		t.Fatalf("width does not scale: %g vs %g", w2, w1)
	}
	// 10pt 的 "Hello" 不可能超过 5cm
	if w1 > 50 {
		t.Fatalf("width %g looks like the wrong unit", w1)
	}
}

func TestTextWidthBoldIsWider(t *testing.T) {
	r := New(renderer.Assets{})
	bold := layout.FontResource{Name: layout.FontBold, Src: "embed:Bold", Style: "bold"}
	size := 10 * layout.PtToMm
	wr, err := r.TextWidth("Amazing Grace", regular, size)
	if err != nil {
		t.Fatal(err)
	}
	wb, err := r.TextWidth("Amazing Grace", bold, size)
	if err != nil {
		t.Fatal(err)
	}
	if wb <= wr {
		t.Fatalf("bold %g should be wider than regular %g", wb, wr)
	}
}

func TestMissingFont(t *testing.T) {
	r := New(renderer.Assets{})
	if _, err := r.TextWidth("x", layout.FontResource{Name: "x", Src: "embed:Nope"}, 3); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestDashSegments(t *testing.T) {
	ln := layout.Line{X1: 0, Y1: 5, X2: 5, Y2: 5, Dash: []float64{0.1, 2}}
	segs := dashSegments(ln)
	if len(segs) != 3 {
		t.Fatalf("expected 3 dashes, got %d", len(segs))
	}
	for _, s := range segs {
		if s.X2-s.X1 > 0.1+1e-9 || s.Y1 != 5 {
			t.Fatalf("bad segment %#v", s)
		}
	}
	solid := layout.Line{X1: 0, Y1: 0, X2: 10, Y2: 0}
	if got := dashSegments(solid); len(got) != 1 || !reflect.DeepEqual(got[0], solid) {
		t.Fatalf("solid line changed: %#v", got)
	}
}

func TestRenderBook(t *testing.T) {
	r := New(renderer.Assets{})
	sg := &song.Song{Title: "Amazing Grace", Label: song.Label{Letter: 'A', Number: 1}}
	v, err := song.NewVerse("Strophe 1", "[G]Amazing [C]grace how [G]sweet")
	if err != nil {
		t.Fatal(err)
	}
	sg.Verses = append(sg.Verses, v)

	res, err := layout.BuildBook([]*song.Song{sg}, layout.BuildOptions{
		Typesetter:       r,
		Style:            layout.DefaultStyle(),
		IndexPages:       1,
		IndexPageNumbers: true,
		Meta:             layout.DocumentMeta{Title: "Test"},
		Logger:           zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("BuildBook: %v", err)
	}
	pdf, err := r.Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for empty result")
	}
}
