// Package song 定义歌本的数据模型：带和弦的行、段落（Verse）与歌曲。
// 模型在导入阶段构造一次，此后只读；唯一的例外是 Song.StartPage，由分页规划写入。
package song

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	ChordStart = '['
	ChordEnd   = ']'

	// NoteHeading 标记自由格式的备注段落，以较小字号排版且不输出标题行。
	NoteHeading = "Note"
	// PageBreakHeading 标记强制换页的段落。
	PageBreakHeading = "newPage"
)

var (
	// ErrMalformedInput 表示输入缺少必需结构（例如段落标题未闭合、缺少标题字段）。
	ErrMalformedInput = errors.New("输入格式错误")
	// ErrEmptyVerse 表示段落没有任何文本，调用方应丢弃该段落。
	ErrEmptyVerse = errors.New("段落为空")
)

// Segment 是行内的一段纯文本或和弦。
type Segment struct {
	Text  string `json:"text"`
	Chord bool   `json:"chord"`
}

// Line 由交替出现的文本段与和弦段组成，总以文本段开头（可以为空串）。
type Line struct {
	Segments []Segment `json:"segments"`
}

// ParseLine 按 [chord] 标记切分一行文本。
// 切分结果保证文本段与和弦段交替出现：相邻和弦之间、行尾和弦之后都会补一个空文本段。
func ParseLine(text string) Line {
	var segs []Segment
	chord := false
	for _, piece := range strings.Split(text, string(ChordStart)) {
		for _, sub := range strings.Split(piece, string(ChordEnd)) {
			segs = append(segs, Segment{Text: sub, Chord: chord})
			chord = !chord
		}
	}
	// 最后一次翻转总是多出来的；若最后一段是和弦则补空文本段。
	if segs[len(segs)-1].Chord {
		segs = append(segs, Segment{})
	}
	return Line{Segments: segs}
}

// PlainText 返回去掉和弦后的歌词文本。
func (l Line) PlainText() string {
	var b strings.Builder
	for _, s := range l.Segments {
		if !s.Chord {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// HasChords 判断行内是否有和弦。
func (l Line) HasChords() bool {
	for _, s := range l.Segments {
		if s.Chord {
			return true
		}
	}
	return false
}

// String 还原为 [chord] 源格式。
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l.Segments {
		if s.Chord {
			b.WriteRune(ChordStart)
			b.WriteString(s.Text)
			b.WriteRune(ChordEnd)
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// VerseKind 区分段落的排版方式。
type VerseKind int

const (
	KindRegular VerseKind = iota
	KindNote
	KindPageBreak
)

func (k VerseKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindPageBreak:
		return "page-break"
	default:
		return "regular"
	}
}

// KindOf 根据段落标题推断段落类型。
func KindOf(heading string) VerseKind {
	switch heading {
	case NoteHeading:
		return KindNote
	case PageBreakHeading:
		return KindPageBreak
	default:
		return KindRegular
	}
}

// Verse 是歌曲中的一个命名段落（主歌、副歌、备注……）。
type Verse struct {
	Heading string    `json:"heading"`
	Kind    VerseKind `json:"kind"`
	Lines   []Line    `json:"lines"`
}

// NewVerse 把多行文本切成 Line，空行会被过滤。没有任何行时返回 ErrEmptyVerse。
func NewVerse(heading, text string) (Verse, error) {
	v := Verse{Heading: heading, Kind: KindOf(heading)}
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v.Lines = append(v.Lines, ParseLine(raw))
	}
	if len(v.Lines) == 0 && v.Kind != KindPageBreak {
		return v, fmt.Errorf("段落 %q: %w", heading, ErrEmptyVerse)
	}
	return v, nil
}

// Label 是歌曲编号，例如 A3（首字母 + 序号）。
type Label struct {
	Letter rune `json:"letter"`
	Number int  `json:"number"`
}

func (l Label) String() string {
	if l.Number == 0 {
		return ""
	}
	return fmt.Sprintf("%c%d", l.Letter, l.Number)
}

// LetterOf 返回标题的编号首字母；非字母开头的标题统一归入 '#'。
func LetterOf(title string) rune {
	for _, r := range strings.ToUpper(title) {
		if unicode.IsLetter(r) {
			return r
		}
		break
	}
	return '#'
}

// Song 是一首完整的歌曲。
type Song struct {
	Title   string   `json:"title"`
	Label   Label    `json:"label"`
	Authors []string `json:"authors,omitempty"`
	Verses  []Verse  `json:"verses"`
	// StartPage 由分页规划写入且只写一次；0 表示尚未分配。
	StartPage int `json:"startPage,omitempty"`
}

// Heading 返回歌曲标题行，例如 "A3. Amazing Grace"。
func (s *Song) Heading() string {
	if s.Label.Number == 0 {
		return s.Title
	}
	return s.Label.String() + ". " + s.Title
}

func (s *Song) String() string { return s.Title }
