package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// cursorEpsilon 用于比较光标位置，避免浮点累计误差导致误判换页。
const cursorEpsilon = 1e-6

// Context 是贯穿所有排版调用的画布状态。
//
// 字段归属：x/y/page 只由 Context 自身的方法修改；font 由段落与歌曲排版通过 SetFont 修改；
// songID 只由歌曲排版通过 SetSongID 修改，用于页脚。
type Context struct {
	style  Style
	fonts  map[string]FontResource
	ts     Typesetter
	sink   pageSink
	log    *zap.Logger
	widths map[widthKey]float64

	x, y   float64
	page   int
	font   FontResource
	size   float64
	songID string
}

type widthKey struct {
	font string
	size float64
	text string
}

func newContext(opts BuildOptions, sink pageSink) *Context {
	c := &Context{
		style:  opts.Style,
		fonts:  opts.Fonts,
		ts:     opts.Typesetter,
		sink:   sink,
		log:    opts.Logger,
		widths: map[widthKey]float64{},
		x:      opts.Style.Margin.Left,
		y:      opts.Style.Margin.Top,
	}
	c.SetFont(FontRegular, opts.Style.FontSize)
	return c
}

// Page 返回当前页号（从 1 开始，尚未开页时为 0）。
func (c *Context) Page() int { return c.page }

// X 返回当前水平光标。
func (c *Context) X() float64 { return c.x }

// Y 返回当前垂直光标。
func (c *Context) Y() float64 { return c.y }

// NewPage 开启新页，光标回到内容区域左上角。新页继承当前歌曲编号。
func (c *Context) NewPage() {
	c.page++
	c.sink.newPage(c.page, c.songID)
	c.x = c.style.Margin.Left
	c.y = c.style.Margin.Top
}

// SetSongID 记录当前页所属歌曲，供页脚使用。
func (c *Context) SetSongID(id string) {
	c.songID = id
	if c.page > 0 {
		c.sink.stampSong(id)
	}
}

// SetFont 选择后续文本使用的字体与字号（mm）。
func (c *Context) SetFont(name string, size float64) {
	f, ok := c.fonts[name]
	if !ok {
		f = FontResource{Name: name}
	}
	c.font = f
	c.size = size
}

// Remaining 返回当前页剩余的可用高度。
func (c *Context) Remaining() float64 { return c.style.ContentBottom() - c.y }

func (c *Context) fits(h float64) bool { return h <= c.Remaining()+cursorEpsilon }

func (c *Context) atPageTop() bool { return c.y <= c.style.Margin.Top+cursorEpsilon }

// TextWidth 以当前字体测量文本宽度（mm）。
func (c *Context) TextWidth(text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	key := widthKey{font: c.font.Name, size: c.size, text: text}
	if w, ok := c.widths[key]; ok {
		return w, nil
	}
	w, err := c.ts.TextWidth(text, c.font, c.size)
	if err != nil {
		return 0, fmt.Errorf("测量文本 %q 失败: %w", text, err)
	}
	c.widths[key] = w
	return w, nil
}

// Write 在当前光标处输出一段文本（行框高度 h），并把水平光标前移文本宽度。
func (c *Context) Write(h float64, text string) error {
	_, err := c.write(h, text)
	return err
}

func (c *Context) write(h float64, text string) (TextBox, error) {
	w, err := c.TextWidth(text)
	if err != nil {
		return TextBox{}, err
	}
	tb := TextBox{
		Content:  text,
		X:        c.x,
		Y:        c.y,
		Width:    w,
		Height:   h,
		Baseline: baseline(c.y, h, c.size),
		Font:     c.font.Name,
		FontSize: c.size,
	}
	if text != "" {
		c.sink.appendText(tb)
	}
	c.x += w
	return tb, nil
}

// WriteLink 与 Write 相同，同时在文本区域上放置跳转到 target 页的链接。
func (c *Context) WriteLink(h float64, text string, target int) error {
	tb, err := c.write(h, text)
	if err != nil {
		return err
	}
	if text != "" && target > 0 {
		c.sink.appendLink(LinkBox{X: tb.X, Y: tb.Y, Width: tb.Width, Height: h, Target: target})
	}
	return nil
}

// Ln 换行：水平光标回到左边距，垂直光标下移 h（h 可为负）。
func (c *Context) Ln(h float64) {
	c.x = c.style.Margin.Left
	c.y += h
}

// DashedLine 绘制一条水平虚线，dash 为实线段长度，space 为间隔长度。
func (c *Context) DashedLine(x1, x2, y, dash, space float64) {
	if x2 <= x1 {
		return
	}
	c.sink.appendLine(Line{X1: x1, Y1: y, X2: x2, Y2: y, Dash: []float64{dash, space}})
}

// Image 在绝对位置放置图片，不移动光标。
func (c *Context) Image(path string, x, y, w, h float64) {
	c.sink.appendImage(ImageBox{Path: path, X: x, Y: y, Width: w, Height: h})
}

// baseline 计算行框内文字的基线：行框垂直居中，再按字号下移 0.3 倍。
func baseline(top, h, fontSize float64) float64 {
	return top + h/2 + 0.3*fontSize
}
