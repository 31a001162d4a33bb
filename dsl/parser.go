// Package dsl 读写歌本使用的和弦歌词文本格式。
//
// 格式示例：
//
//	{comment: Strophe 1}
//	[G]Amazing [C]grace how [G]sweet the sound
//
// 第一个段落标题之前的文字会被忽略，空行不影响结构。
package dsl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/chordbook/song"
)

const (
	HeadingStart = "{comment:"
	HeadingEnd   = "}"
)

var (
	sheetLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Heading", Pattern: `\{comment:[^}\n]*\}`},
		{Name: "Unclosed", Pattern: `\{comment:[^\n]*`},
		{Name: "Newline", Pattern: `\n`},
		{Name: "Text", Pattern: `[^\n]+`},
	})

	sheetParser = participle.MustBuild[Sheet](
		participle.Lexer(sheetLexer),
	)
)

// Sheet is the AST of one chord sheet file.
type Sheet struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Preamble []string       `parser:"( @Text | Newline )*"`
	Sections []*Section     `parser:"@@*"`
}

// Section is a heading followed by its raw lines.
type Section struct {
	Heading Heading  `parser:"@Heading"`
	Lines   []string `parser:"( @Text | Newline )*"`
}

// Heading strips the {comment: …} wrapper on capture.
type Heading string

// Capture implements participle.Capture.
func (h *Heading) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("heading capture requires value")
	}
	v := strings.TrimPrefix(values[0], HeadingStart)
	v = strings.TrimSuffix(v, HeadingEnd)
	*h = Heading(strings.TrimSpace(v))
	return nil
}

// ParseSheet 解析和弦文本的语法结构。段落标题未闭合时返回 song.ErrMalformedInput。
func ParseSheet(r io.Reader) (*Sheet, error) {
	sheet, err := sheetParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", song.ErrMalformedInput, err)
	}
	return sheet, nil
}

// Parse 读取一首歌。没有文本的段落会被丢弃。
func Parse(title string, r io.Reader) (*song.Song, error) {
	sheet, err := ParseSheet(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}
	return sheet.Song(title)
}

// ParseString parses a chord sheet held in memory.
func ParseString(title, text string) (*song.Song, error) {
	return Parse(title, strings.NewReader(text))
}

// Song 把语法树转换为歌曲模型。
func (s *Sheet) Song(title string) (*song.Song, error) {
	sg := &song.Song{Title: title}
	for _, sec := range s.Sections {
		v, err := song.NewVerse(string(sec.Heading), strings.Join(sec.Lines, "\n"))
		if errors.Is(err, song.ErrEmptyVerse) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
		sg.Verses = append(sg.Verses, v)
	}
	return sg, nil
}
