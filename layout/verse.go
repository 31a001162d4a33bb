package layout

import "github.com/ByLCY/chordbook/song"

// renderVerse 输出段落标题与各行。split 为 true 时在行边界换页（仅用于超高段落）。
func renderVerse(c *Context, v song.Verse, split bool) error {
	s := c.style
	lead := s.HeadingHeight() + s.VersePadding
	switch v.Kind {
	case song.KindNote:
		// 备注不画标题，但保留同样的高度，保证试排与正式排版一致
		c.SetFont(FontRegular, s.NoteFontSize)
		c.Ln(lead)
	case song.KindPageBreak:
		c.SetFont(FontRegular, s.FontSize)
	default:
		c.SetFont(FontBold, s.FontSize)
		if err := c.Write(lead+s.VersePadding, v.Heading); err != nil {
			return err
		}
		c.Ln(lead)
		c.SetFont(FontRegular, s.FontSize)
	}

	for _, l := range v.Lines {
		if split && !c.atPageTop() && !c.fits(s.LineHeight(l)) {
			c.NewPage()
		}
		if err := renderLine(c, l); err != nil {
			return err
		}
	}
	return nil
}
