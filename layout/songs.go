package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/song"
)

// ErrOverflowVerse 表示某个段落高于一整页的可用高度。
var ErrOverflowVerse = errors.New("段落高度超过整页")

// renderSong 从新页开始排版一首歌，返回歌曲实际的起始页。
//
// align 为 true 时，若当前页与规划的起始页不一致，会插入一页空白页（页脚不显示歌曲编号），
// 使多页歌曲落在规划好的奇偶页上。
func renderSong(c *Context, sg *song.Song, align bool, overflow OverflowPolicy) (int, error) {
	s := c.style
	c.NewPage()
	if align && sg.StartPage > 0 && c.page != sg.StartPage {
		c.SetSongID("")
		c.NewPage()
	}
	start := c.page
	c.SetSongID(sg.Label.String())

	c.SetFont(FontBold, s.TitleFontSize)
	if err := c.Write(s.TitleHeight, sg.Heading()); err != nil {
		return 0, err
	}
	c.Ln(s.TitleHeight)

	for _, v := range sg.Verses {
		h := s.VerseHeight(v)
		split := false
		if v.Kind == song.KindPageBreak && !c.atPageTop() {
			c.NewPage()
		}
		switch {
		case h > s.UsableHeight()+cursorEpsilon:
			if overflow == OverflowError {
				return 0, fmt.Errorf("%w: 歌曲 %q 段落 %q 高 %.1fmm，整页可用 %.1fmm",
					ErrOverflowVerse, sg.Title, v.Heading, h, s.UsableHeight())
			}
			c.log.Warn("段落高于整页，按行拆分",
				zap.String("song", sg.Title), zap.String("verse", v.Heading), zap.Float64("height", h))
			if !c.atPageTop() {
				c.NewPage()
			}
			split = true
		case !c.fits(h):
			c.NewPage()
		}
		if err := renderVerse(c, v, split); err != nil {
			return 0, fmt.Errorf("歌曲 %q: %w", sg.Title, err)
		}
	}
	return start, nil
}
