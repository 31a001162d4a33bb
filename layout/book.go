package layout

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/binding"
	"github.com/ByLCY/chordbook/song"
)

var (
	// ErrIndexOverflow 表示目录实际占用的页数超过了预留页数，规划好的页码将全部错位。
	ErrIndexOverflow = errors.New("目录超出预留页数")
	// ErrPageDrift 表示歌曲实际起始页与规划不一致。
	ErrPageDrift = errors.New("歌曲起始页与规划不一致")
)

// 目录页码前虚线的实线段与间隔长度（mm）。
const (
	leaderDash  = 0.1
	leaderSpace = 2
)

// BuildBook 生成整本歌本的布局：先试排规划页码，再依次排版标题页、目录与全部歌曲。
func BuildBook(songs []*song.Song, opts BuildOptions) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	plan, err := planBook(songs, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("Pagination planned",
		zap.Int("songs", len(songs)),
		zap.Int("index pages", plan.IndexPages),
		zap.Int("pages", plan.TotalPages))

	collector := newPageCollector(opts.Style)
	c := newContext(opts, collector)

	if err := renderTitlePage(c, opts.TitlePage, titleData(songs, opts, plan)); err != nil {
		return nil, fmt.Errorf("排版标题页失败: %w", err)
	}

	if err := renderIndex(c, songs, opts.IndexPageNumbers, true); err != nil {
		return nil, fmt.Errorf("排版目录失败: %w", err)
	}
	if used := c.Page() - 1; used > plan.IndexPages {
		return nil, fmt.Errorf("%w: 需要 %d 页，预留 %d 页", ErrIndexOverflow, used, plan.IndexPages)
	}
	for c.Page() < 1+plan.IndexPages {
		c.NewPage()
	}

	for _, sg := range songs {
		start, err := renderSong(c, sg, opts.EvenPages, opts.Overflow)
		if err != nil {
			return nil, err
		}
		if start != sg.StartPage {
			return nil, fmt.Errorf("%w: 歌曲 %q 规划第 %d 页，实际第 %d 页", ErrPageDrift, sg.Title, sg.StartPage, start)
		}
	}

	pages := collector.pages()
	if err := applyFooters(c, pages, opts.Footer); err != nil {
		return nil, err
	}
	return &Result{
		Pages:     pages,
		Resources: ResourceSet{Fonts: opts.Fonts},
		Meta:      opts.Meta,
		Plan:      plan,
	}, nil
}

// titleData 是标题页占位符可引用的数据，例如 ${title}、${keywords[0]}、${entries[0].title}。
func titleData(songs []*song.Song, opts BuildOptions, plan *Plan) map[string]any {
	entries := make([]any, 0, len(songs))
	for _, sg := range songs {
		entries = append(entries, map[string]any{
			"title":   sg.Title,
			"label":   sg.Label.String(),
			"page":    sg.StartPage,
			"authors": sg.Authors,
		})
	}
	return map[string]any{
		"title":    opts.Meta.Title,
		"author":   opts.Meta.Author,
		"keywords": opts.Meta.Keywords,
		"songs":    len(songs),
		"pages":    plan.TotalPages,
		"entries":  entries,
	}
}

// renderTitlePage 在新的一页上输出标题卡：所有块整体垂直居中，各块水平居中。
func renderTitlePage(c *Context, card TitleCard, data map[string]any) error {
	s := c.style
	c.NewPage()

	heights := make([]float64, len(card.Blocks))
	total := 0.0
	for i, b := range card.Blocks {
		heights[i] = titleBlockHeight(s, b)
		total += heights[i] + b.Gap
	}

	y := (s.PageHeight-total)/2 + card.Offset
	for i, b := range card.Blocks {
		h := heights[i]
		if b.Image != "" {
			w := b.Width
			if w <= 0 {
				w = h
			}
			c.Image(b.Image, (s.PageWidth-w)/2, y, w, h)
		} else {
			size := b.FontSize
			if size <= 0 {
				size = s.TitleFontSize
			}
			font := FontRegular
			if b.Bold {
				font = FontBold
			}
			c.SetFont(font, size)
			text := binding.Interpolate(b.Text, data)
			w, err := c.TextWidth(text)
			if err != nil {
				return err
			}
			c.x = (s.PageWidth - w) / 2
			c.y = y
			if err := c.Write(h, text); err != nil {
				return err
			}
		}
		y += h + b.Gap
	}
	c.Ln(0)
	return nil
}

func titleBlockHeight(s Style, b TitleBlock) float64 {
	switch {
	case b.Height > 0:
		return b.Height
	case b.Image != "" && b.Width > 0:
		return b.Width
	case b.Image != "":
		return 0
	default:
		return s.LineSpacing + s.IndexLeading
	}
}

// renderIndex 从新页开始输出目录。每个条目的编号、标题与页码都链接到歌曲首页，
// 页码右对齐，前面以虚线连接。requirePlanned 为 false 时用于试排目录页数。
func renderIndex(c *Context, songs []*song.Song, showNumbers, requirePlanned bool) error {
	s := c.style
	lh := s.IndexLineHeight()
	c.NewPage()
	for _, sg := range songs {
		if requirePlanned && sg.StartPage <= 0 {
			return fmt.Errorf("%w: %q", ErrUnplanned, sg.Title)
		}
		if !c.fits(lh) {
			c.NewPage()
		}
		target := sg.StartPage

		if label := sg.Label.String(); label != "" {
			c.SetFont(FontBold, s.FontSize)
			if err := c.WriteLink(lh, label+". ", target); err != nil {
				return err
			}
		}
		c.SetFont(FontRegular, s.FontSize)
		if err := c.WriteLink(lh, sg.Title, target); err != nil {
			return err
		}

		if showNumbers {
			leaderStart := c.x + 1
			num := strconv.Itoa(target)
			w, err := c.TextWidth(num)
			if err != nil {
				return err
			}
			c.x = s.PageWidth - s.Margin.Right - s.IndexNumberInset - w
			numX := c.x
			if err := c.WriteLink(lh, num, target); err != nil {
				return err
			}
			c.DashedLine(leaderStart, numX, c.y+s.LineSpacing, leaderDash, leaderSpace)
		}
		c.Ln(lh)
	}
	return nil
}

func measureIndex(songs []*song.Song, opts BuildOptions) (int, error) {
	counter := &pageCounter{}
	c := newContext(opts, counter)
	if err := renderIndex(c, songs, opts.IndexPageNumbers, false); err != nil {
		return 0, err
	}
	return counter.pageCount(), nil
}

// applyFooters 为每页生成页脚：页码（标题页除外）或当前歌曲编号，二者不会同时出现。
func applyFooters(c *Context, pages []Page, mode FooterMode) error {
	s := c.style
	c.SetFont(FontRegular, s.FontSize)
	for i := range pages {
		p := &pages[i]
		var text string
		switch mode {
		case FooterNumbers:
			if p.Number > 1 {
				text = strconv.Itoa(p.Number)
			}
		case FooterIdentifiers:
			text = p.SongID
		}
		if text == "" {
			continue
		}
		w, err := c.TextWidth(text)
		if err != nil {
			return err
		}
		y := s.PageHeight - s.FooterOffset
		p.Footer.Texts = append(p.Footer.Texts, TextBox{
			Content:  text,
			X:        (s.PageWidth - w) / 2,
			Y:        y,
			Width:    w,
			Height:   s.FooterHeight,
			Baseline: baseline(y, s.FooterHeight, c.size),
			Font:     c.font.Name,
			FontSize: c.size,
		})
	}
	return nil
}
