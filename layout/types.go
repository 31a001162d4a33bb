package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
	Plan      *Plan        `json:"plan,omitempty"`
}

// ResourceSet 记录渲染需要的字体定义。
type ResourceSet struct {
	Fonts map[string]FontResource `json:"fonts"`
}

// FontResource 描述字体资源，src 可以是文件路径或内置 embed:* 形式。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。坐标单位均为 mm，原点在左上角。
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
	// SongID 是页脚使用的当前歌曲编号（例如 A3），标题页、目录页与对齐空白页为空。
	SongID string     `json:"songId,omitempty"`
	Texts  []TextBox  `json:"texts"`
	Images []ImageBox `json:"images,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Links  []LinkBox  `json:"links,omitempty"`
	Footer Footer     `json:"footer"`
}

// Footer 描述页脚区域的元素集合。
type Footer struct {
	Texts []TextBox `json:"texts,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一段已经排好坐标的单行文本。
// (X, Y) 是行框左上角，Height 是行框高度，Baseline 是绘制基线的纵坐标。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Baseline float64 `json:"baseline"`
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"` // mm
	Color    Color   `json:"color"`
}

// ImageBox 用于描述图片位置与尺寸。
type ImageBox struct {
	Path   string  `json:"path"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line 表示一条线段；Dash 非空时按 [实线长, 间隔长] 绘制虚线。
type Line struct {
	X1    float64   `json:"x1"`
	Y1    float64   `json:"y1"`
	X2    float64   `json:"x2"`
	Y2    float64   `json:"y2"`
	Color Color     `json:"color"`
	Width float64   `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
	Dash  []float64 `json:"dash,omitempty"`
}

// LinkBox 是一块可点击区域，跳转到文档内的 Target 页（从 1 开始）。
type LinkBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Target int     `json:"target"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
