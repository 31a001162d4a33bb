package fpdfrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/chordbook/layout"
	"github.com/ByLCY/chordbook/renderer"
	"github.com/ByLCY/chordbook/song"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectImageType(t *testing.T) {
	got, err := detectImageType(pngBytes(t))
	if err != nil || got != "png" {
		t.Fatalf("detectImageType(png) = %q, %v", got, err)
	}
	if _, err := detectImageType([]byte("plain text")); err == nil {
		t.Fatalf("expected error for unknown data")
	}
}

func TestTextWidth(t *testing.T) {
	r := New(renderer.Assets{})
	font := layout.FontResource{Name: layout.FontRegular, Src: "embed:Regular"}
	size := 10 * layout.PtToMm
	w1, err := r.TextWidth("Hallo Welt", font, size)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	w2, err := r.TextWidth("Hallo Welt", font, 2*size)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if w1 <= 0 || math.Abs(w2-2*w1) > 1e-6 {
		t.Fatalf("unexpected widths %g, %g", w1, w2)
	}
	if w, _ := r.TextWidth("", font, size); w != 0 {
		t.Fatalf("empty text width = %g", w)
	}
}

func buildBook(t *testing.T, r *Renderer, card layout.TitleCard) *layout.Result {
	t.Helper()
	var songs []*song.Song
	for i, title := range []string{"Amazing Grace", "Über den Wolken"} {
		sg := &song.Song{Title: title, Label: song.Label{Letter: song.LetterOf(title), Number: i + 1}}
		v, err := song.NewVerse("Refrain", "[G]Amazing [C]grace how [G]sweet\nthe sound")
		if err != nil {
			t.Fatal(err)
		}
		sg.Verses = append(sg.Verses, v)
		songs = append(songs, sg)
	}
	res, err := layout.BuildBook(songs, layout.BuildOptions{
		Typesetter:       r,
		Style:            layout.DefaultStyle(),
		IndexPages:       1,
		IndexPageNumbers: true,
		TitlePage:        card,
		Meta:             layout.DocumentMeta{Title: "Liederbuch", Author: "Chor"},
		Logger:           zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("BuildBook: %v", err)
	}
	return res
}

func TestRenderWithLinksAndImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), pngBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(renderer.Assets{BaseDir: dir})
	res := buildBook(t, r, layout.TitleCard{Blocks: []layout.TitleBlock{
		{Image: "logo.png", Width: 60, Height: 30},
		{Text: "${title}", Bold: true},
	}})

	out, err := r.Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if !bytes.Contains(out, []byte("/Link")) {
		t.Fatalf("expected link annotations for the index")
	}
}

func TestRenderMissingImage(t *testing.T) {
	r := New(renderer.Assets{BaseDir: t.TempDir()})
	res := buildBook(t, r, layout.TitleCard{Blocks: []layout.TitleBlock{{Image: "missing.png", Width: 40}}})
	if _, err := r.Render(res); err == nil {
		t.Fatalf("expected error for missing image")
	}
}

func TestRenderEmpty(t *testing.T) {
	r := New(renderer.Assets{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}
