package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/chordbook/song"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func titles(songs []*song.Song) []string {
	var out []string
	for _, sg := range songs {
		out = append(out, sg.Heading())
	}
	return out
}

const verse = "{comment: Strophe 1}\n[C]la la\n"

func TestPreprocess(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a\n\n\nignored", "a"},
		{"don" + "â€™" + "t", "don't"},
		{"Hal - le - lu - jah", "Hallelujah"},
		{"too   many  spaces", "too many spaces"},
		{"Café", "Café"},
	}
	for _, tc := range cases {
		if got := Preprocess(tc.in); got != tc.want {
			t.Fatalf("Preprocess(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadWithIndex(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.txt":              "# Reihenfolge\nBlowin in the wind\nAmazing Grace\nAll along\n\n99 Luftballons\n",
		"Amazing Grace.txt":      verse,
		"Blowin in the wind.txt": verse,
		"All along.txt":          verse,
		"99 Luftballons.txt":     verse,
		"Unlisted.txt":           verse,
	})
	songs, err := Load(dir, Options{Logger: zaptest.NewLogger(t)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"B1. Blowin in the wind", "A1. Amazing Grace", "A2. All along", "#1. 99 Luftballons"}
	if got := titles(songs); !reflect.DeepEqual(got, want) {
		t.Fatalf("songs = %v, want %v", got, want)
	}
}

func TestLoadNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Song 10.txt": verse,
		"Song 2.txt":  verse,
		"Song 1.txt":  verse,
		"notes.md":    "ignored",
	})
	songs, err := Load(dir, Options{Numbering: NumberingNumbers})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"S1. Song 1", "S2. Song 2", "S3. Song 10"}
	if got := titles(songs); !reflect.DeepEqual(got, want) {
		t.Fatalf("songs = %v, want %v", got, want)
	}
}

func TestLoadCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Good.txt":   verse,
		"Broken.txt": "{comment: Strophe 1\nla\n",
		"Worse.txt":  "{comment: Refrain\nla\n",
	})
	_, err := Load(dir, Options{})
	if !errors.Is(err, song.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", n, err)
	}
}

func TestLoadEmptyDir(t *testing.T) {
	if _, err := Load(t.TempDir(), Options{}); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestAssignLabelsAlphaRestartsPerLetter(t *testing.T) {
	songs := []*song.Song{{Title: "Abend"}, {Title: "Atem"}, {Title: "Berg"}, {Title: "Ast"}}
	if err := AssignLabels(songs, NumberingAlpha); err != nil {
		t.Fatal(err)
	}
	want := []string{"A1", "A2", "B1", "A1"}
	for i, sg := range songs {
		if sg.Label.String() != want[i] {
			t.Fatalf("song %d label = %s, want %s", i, sg.Label, want[i])
		}
	}
	if err := AssignLabels(songs, "roman"); err == nil {
		t.Fatalf("expected error for unknown numbering")
	}
}

const lyricsXML = `<song xmlns="http://openlyrics.info/namespace/2009/song">
<properties><titles><title>AC/DC Medley</title></titles></properties>
<lyrics><verse name="v1"><lines><tag name="c">E</tag>Highway</lines></verse></lyrics>
</song>`

func TestImport(t *testing.T) {
	src, dst := t.TempDir(), filepath.Join(t.TempDir(), "crd")
	writeFiles(t, src, map[string]string{
		"medley.xml": lyricsXML,
		"broken.xml": "<song></song>",
		"readme.txt": "not a song",
	})
	n, err := Import(src, dst, zaptest.NewLogger(t))
	if n != 1 {
		t.Fatalf("imported %d songs, want 1", n)
	}
	if !errors.Is(err, song.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput for broken.xml, got %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "AC_DC Medley.txt"))
	if err != nil {
		t.Fatalf("read imported song: %v", err)
	}
	if got, want := string(data), "{comment: Strophe}\n[E]Highway\n"; got != want {
		t.Fatalf("imported sheet = %q, want %q", got, want)
	}

	songs, err := Load(dst, Options{})
	if err != nil {
		t.Fatalf("Load imported: %v", err)
	}
	if len(songs) != 1 || songs[0].Verses[0].Lines[0].String() != "[E]Highway" {
		t.Fatalf("unexpected round trip %#v", songs)
	}
}
