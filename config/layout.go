package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/layout"
)

// mm 把已通过校验的长度换算为毫米；空串视为 0。
func mm(value string) float64 {
	if value == "" {
		return 0
	}
	l, err := layout.ParseLength(value)
	if err != nil {
		return 0
	}
	return l.ToMM()
}

// Style 根据配置生成版式，未配置的常量沿用默认值。
func (b *BookConfig) Style() (layout.Style, error) {
	s := layout.DefaultStyle()
	w, h, err := layout.ParsePageSize(b.PageSize)
	if err != nil {
		return s, err
	}
	s.PageWidth, s.PageHeight = w, h
	s.FontSize = mm(b.FontSize)
	s.TitleFontSize = mm(b.TitleFontSize)
	s.NoteFontSize = mm(b.NoteFontSize)
	s.LineSpacing = mm(b.LineSpacing)
	s.ChordPadding = mm(b.ChordPadding)
	s.VersePadding = mm(b.VersePadding)
	s.Margin = layout.Margin{
		Top:    mm(b.Margins.Top),
		Right:  mm(b.Margins.Side),
		Bottom: mm(b.Margins.Bottom),
		Left:   mm(b.Margins.Side),
	}
	return s, nil
}

// BuildOptions 把配置转换为布局参数。
func (c *Config) BuildOptions(ts layout.Typesetter, log *zap.Logger) (layout.BuildOptions, error) {
	style, err := c.Book.Style()
	if err != nil {
		return layout.BuildOptions{}, fmt.Errorf("invalid page size: %w", err)
	}
	opts := layout.BuildOptions{
		Typesetter: ts,
		Style:      style,
		Fonts: map[string]layout.FontResource{
			layout.FontRegular: {Name: layout.FontRegular, Src: c.Book.Fonts.Regular},
			layout.FontBold:    {Name: layout.FontBold, Src: c.Book.Fonts.Bold, Style: "bold"},
		},
		IndexPages:       c.Book.IndexPages,
		IndexPageNumbers: c.Book.IndexPageNumbers,
		EvenPages:        c.Book.EvenPages,
		Footer:           layout.FooterMode(c.Book.Footer),
		Overflow:         layout.OverflowPolicy(c.Book.Overflow),
		TitlePage:        layout.TitleCard{Offset: mm(c.TitlePage.Offset)},
		Meta: layout.DocumentMeta{
			Title:    c.Book.Title,
			Author:   c.Book.Author,
			Subject:  c.Book.Subject,
			Keywords: c.Book.Keywords,
		},
		Logger: log,
	}
	for _, b := range c.TitlePage.Blocks {
		opts.TitlePage.Blocks = append(opts.TitlePage.Blocks, layout.TitleBlock{
			Text:     b.Text,
			FontSize: mm(b.Size),
			Bold:     b.Bold,
			Image:    b.Image,
			Width:    mm(b.Width),
			Height:   mm(b.Height),
			Gap:      mm(b.Gap),
		})
	}
	return opts, nil
}
