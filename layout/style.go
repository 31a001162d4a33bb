package layout

import (
	"fmt"

	"github.com/ByLCY/chordbook/song"
)

// Style 汇总所有固定的版式常量，单位均为 mm。
// 测量（试排）与绘制共享同一个 Style，因此高度计算只依赖这些常量与行内容。
type Style struct {
	PageWidth  float64
	PageHeight float64
	Margin     Margin

	FontSize      float64
	TitleFontSize float64
	NoteFontSize  float64

	// LineSpacing 是歌词行与和弦行的行高。
	LineSpacing float64
	// ChordPadding 是和弦行与歌词行之间的附加位移，通常为负值让两行靠近。
	ChordPadding float64
	VersePadding float64
	TitleHeight  float64
	// IndexLeading 是目录条目在 LineSpacing 之上额外的行距。
	IndexLeading float64
	// IndexNumberInset 是目录页码距右边距的额外缩进。
	IndexNumberInset float64
	// FooterOffset 是页脚行框顶部到页面底边的距离。
	FooterOffset float64
	FooterHeight float64
}

// DefaultStyle 返回 A5 歌本的默认版式。
func DefaultStyle() Style {
	return Style{
		PageWidth:        148,
		PageHeight:       210,
		Margin:           Margin{Top: 10, Right: 15, Bottom: 20, Left: 15},
		FontSize:         10 * PtToMm,
		TitleFontSize:    18 * PtToMm,
		NoteFontSize:     8 * PtToMm,
		LineSpacing:      5,
		ChordPadding:     -1.5,
		VersePadding:     4,
		TitleHeight:      10,
		IndexLeading:     2,
		IndexNumberInset: 3,
		FooterOffset:     15,
		FooterHeight:     10,
	}
}

func (s Style) validate() error {
	if s.PageWidth <= 0 || s.PageHeight <= 0 {
		return fmt.Errorf("layout: 页面尺寸无效 %gx%g", s.PageWidth, s.PageHeight)
	}
	if s.LineSpacing <= 0 {
		return fmt.Errorf("layout: 行高必须为正数，实际 %g", s.LineSpacing)
	}
	if s.LineSpacing+s.ChordPadding <= 0 {
		return fmt.Errorf("layout: 和弦行高 %g 与间距 %g 之和必须为正数", s.LineSpacing, s.ChordPadding)
	}
	if s.UsableHeight() <= 0 {
		return fmt.Errorf("layout: 上下边距 %g/%g 超出页面高度", s.Margin.Top, s.Margin.Bottom)
	}
	return nil
}

// ContentBottom 是正文可用区域的底部纵坐标。
func (s Style) ContentBottom() float64 { return s.PageHeight - s.Margin.Bottom }

// UsableHeight 是一整页正文可用的高度。
func (s Style) UsableHeight() float64 { return s.ContentBottom() - s.Margin.Top }

// HeadingHeight 是段落标题占用的固定高度；备注段落不绘制标题，但占用同样的高度。
func (s Style) HeadingHeight() float64 { return s.LineSpacing }

// IndexLineHeight 是目录条目的行高。
func (s Style) IndexLineHeight() float64 { return s.LineSpacing + s.IndexLeading }

// LineHeight 只根据行的分段计算其高度，不做任何绘制。
func (s Style) LineHeight(l song.Line) float64 {
	h := s.LineSpacing
	if l.HasChords() {
		h += s.LineSpacing + s.ChordPadding
	}
	return h
}

// VerseHeight = 标题高度 + 段落间距 + 各行高度之和；换页标记段落没有标题部分。
func (s Style) VerseHeight(v song.Verse) float64 {
	h := 0.0
	if v.Kind != song.KindPageBreak {
		h = s.HeadingHeight() + s.VersePadding
	}
	for _, l := range v.Lines {
		h += s.LineHeight(l)
	}
	return h
}

// SongHeight 是歌曲标题与全部段落的总高度，不考虑换页。
func (s Style) SongHeight(sg *song.Song) float64 {
	h := s.TitleHeight
	for _, v := range sg.Verses {
		h += s.VerseHeight(v)
	}
	return h
}
