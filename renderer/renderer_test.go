package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/chordbook/layout"
)

func TestAssetsImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := Assets{BaseDir: dir, Images: map[string][]byte{"logo": []byte("blob")}}

	got, err := a.Image("logo.png")
	if err != nil || string(got) != "png" {
		t.Fatalf("Image(relative) = %q, %v", got, err)
	}
	got, err = a.Image("builtin:logo")
	if err != nil || string(got) != "blob" {
		t.Fatalf("Image(builtin) = %q, %v", got, err)
	}
	if _, err := a.Image("builtin:missing"); err == nil {
		t.Fatalf("expected error for unknown builtin image")
	}
}

func TestAssetsFont(t *testing.T) {
	a := Assets{}
	data, err := a.Font(layout.FontResource{Name: "Bold", Src: "embed:Bold"})
	if err != nil || len(data) == 0 {
		t.Fatalf("Font(embed) = %d bytes, %v", len(data), err)
	}
	if _, err := a.Font(layout.FontResource{Name: "x"}); err == nil {
		t.Fatalf("expected error for font without src")
	}
}

func TestResolveFont(t *testing.T) {
	fonts := map[string]layout.FontResource{
		layout.FontRegular: {Name: layout.FontRegular, Src: "embed:Regular"},
		layout.FontBold:    {Name: layout.FontBold, Src: "embed:Bold", Style: "bold"},
	}
	if got := ResolveFont(layout.FontBold, fonts); got.Src != "embed:Bold" {
		t.Fatalf("ResolveFont(Bold) = %#v", got)
	}
	if got := ResolveFont("Missing", fonts); got.Name != layout.FontRegular {
		t.Fatalf("ResolveFont fallback = %#v", got)
	}
	if got := ResolveFont("Missing", nil); got.Src != "embed:Regular" {
		t.Fatalf("ResolveFont without fonts = %#v", got)
	}
}
