package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Typesetter 负责测量文本宽度，由渲染后端实现，保证测量与绘制使用同一套字体度量。
// 约定：fontSize 与返回的宽度均为毫米（mm）。
type Typesetter interface {
	TextWidth(text string, font FontResource, fontSize float64) (float64, error)
}

// FooterMode 控制页脚内容：页码、歌曲编号或不输出。
type FooterMode string

const (
	FooterNumbers     FooterMode = "numbers"
	FooterIdentifiers FooterMode = "identifiers"
	FooterNone        FooterMode = "none"
)

// OverflowPolicy 决定单个段落高于整页可用高度时的处理方式。
type OverflowPolicy string

const (
	// OverflowSplit 让超高段落从新页开始，并在行边界继续换页。
	OverflowSplit OverflowPolicy = "split"
	// OverflowError 直接报错终止。
	OverflowError OverflowPolicy = "error"
)

// BuildOptions 配置整本歌本的布局。
type BuildOptions struct {
	Typesetter Typesetter
	Style      Style
	Fonts      map[string]FontResource

	// IndexPages 为目录保留的页数；<=0 时通过试排目录自动计算。
	IndexPages       int
	IndexPageNumbers bool
	EvenPages        bool
	Footer           FooterMode
	Overflow         OverflowPolicy

	TitlePage TitleCard
	Meta      DocumentMeta

	Logger *zap.Logger
}

// TitleCard 描述标题页：若干文本与图片块整体垂直居中，各块水平居中。
type TitleCard struct {
	Blocks []TitleBlock
	// Offset 是整体相对页面中心的纵向偏移（mm，负值向上）。
	Offset float64
}

// TitleBlock 是标题页上的一个块；Image 非空时为图片，否则为文本。
// Text 支持 ${title}、${songs}、${pages} 等占位符。
type TitleBlock struct {
	Text     string
	FontSize float64 // mm；0 表示使用标题字号
	Bold     bool
	Image    string
	Width    float64
	Height   float64
	// Gap 是该块之后的额外间距（mm）。
	Gap float64
}

// Font names used by the layout engine.
const (
	FontRegular = "Regular"
	FontBold    = "Bold"
)

var errNoTypesetter = errors.New("layout: 缺少排版后端 Typesetter")

func (o BuildOptions) withDefaults() (BuildOptions, error) {
	if o.Typesetter == nil {
		return o, errNoTypesetter
	}
	if err := o.Style.validate(); err != nil {
		return o, err
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Footer == "" {
		o.Footer = FooterNumbers
	}
	if o.Overflow == "" {
		o.Overflow = OverflowSplit
	}
	switch o.Footer {
	case FooterNumbers, FooterIdentifiers, FooterNone:
	default:
		return o, fmt.Errorf("layout: 未知的页脚模式 %q", o.Footer)
	}
	switch o.Overflow {
	case OverflowSplit, OverflowError:
	default:
		return o, fmt.Errorf("layout: 未知的超高段落策略 %q", o.Overflow)
	}
	fonts := map[string]FontResource{
		FontRegular: {Name: FontRegular, Src: "embed:Regular"},
		FontBold:    {Name: FontBold, Src: "embed:Bold", Style: "bold"},
	}
	for name, f := range o.Fonts {
		if f.Name == "" {
			f.Name = name
		}
		fonts[name] = f
	}
	o.Fonts = fonts
	if o.Meta.Creator == "" {
		o.Meta.Creator = "chordbook"
	}
	return o, nil
}
