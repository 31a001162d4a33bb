package layout

import (
	"math"

	"github.com/ByLCY/chordbook/song"
)

// chordGapGlyph 的宽度是相邻两个和弦之间的最小间距。
const chordGapGlyph = "_"

// renderLine 输出一行歌词：若有和弦，先在和弦行按歌词位置排布和弦，再输出歌词行。
//
// 和弦光标 x 与歌词位置 textX 分开跟踪：每个文本段把 textX 推进其宽度，随后的和弦落在
// max(上一和弦结束处 + 间距, textX)，既对齐到所标注的词，又不会与前一个和弦重叠。
func renderLine(c *Context, l song.Line) error {
	s := c.style
	if l.HasChords() {
		gap, err := c.TextWidth(chordGapGlyph)
		if err != nil {
			return err
		}
		textX := c.x
		placed := false
		for _, seg := range l.Segments {
			if seg.Chord {
				if err := c.Write(s.LineSpacing, seg.Text); err != nil {
					return err
				}
				placed = true
				continue
			}
			w, err := c.TextWidth(seg.Text)
			if err != nil {
				return err
			}
			textX += w
			natural := c.x
			if placed {
				natural += gap
			}
			c.x = math.Max(natural, textX)
		}
		c.Ln(s.LineSpacing)
		c.Ln(s.ChordPadding)
	}
	if err := c.Write(s.LineSpacing, l.PlainText()); err != nil {
		return err
	}
	c.Ln(s.LineSpacing)
	return nil
}
