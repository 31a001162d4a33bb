package htmlbook

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/ByLCY/chordbook/song"
)

func sampleSongs(t *testing.T) []*song.Song {
	t.Helper()
	v, err := song.NewVerse("Refrain", "[G]Amazing [C]grace\nno chords")
	if err != nil {
		t.Fatal(err)
	}
	note, err := song.NewVerse(song.NoteHeading, "capo 2")
	if err != nil {
		t.Fatal(err)
	}
	return []*song.Song{
		{Title: "Amazing Grace", Label: song.Label{Letter: 'A', Number: 1}, Verses: []song.Verse{note, v}},
		{Title: "Über <den> Wolken", Label: song.Label{Letter: 'Ü', Number: 1}, Verses: []song.Verse{v}},
	}
}

func TestWrite(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, sampleSongs(t), Options{Title: "Liedermappe"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<h1 id="index">Liedermappe</h1>`,
		`<a href="#a1-amazing-grace"><h2 id="index-a1-amazing-grace">A1. Amazing Grace</h2></a>`,
		`<h2 id="a1-amazing-grace">`,
		`<p class="note">`,
		"Über &lt;den&gt; Wolken",
		`<span class="chord">G` + nbsp + `</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<h3>Note</h3>") {
		t.Fatalf("note heading must not be printed")
	}
	if _, err := html.Parse(strings.NewReader(out)); err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
}

func TestLineSegments(t *testing.T) {
	var b strings.Builder
	if err := html.Render(&b, lineNode(song.ParseLine("intro [G]Amazing [C]grace"))); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(b.String(), `class="line-segment"`); got != 3 {
		t.Fatalf("expected 3 segments, got %d in %s", got, b.String())
	}
	if !strings.HasPrefix(b.String(), `<div class="line"><span class="line-segment"><span class="text">intro `) {
		t.Fatalf("unexpected rendering %s", b.String())
	}
}

func TestAnchorsAreUnique(t *testing.T) {
	songs := []*song.Song{{Title: "Same"}, {Title: "Same"}, {Title: "!!!"}}
	ids := anchors(songs)
	if ids[0] != "same" || ids[1] != "same-2" || ids[2] != "song" {
		t.Fatalf("anchors = %v", ids)
	}
}
