// Package canvasrenderer 使用 github.com/tdewolff/canvas 输出 PDF。
// 该后端不生成链接注释，目录条目只作为普通文本输出。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/chordbook/layout"
	"github.com/ByLCY/chordbook/renderer"
)

const defaultLineWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	assets renderer.Assets

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var _ renderer.Backend = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// New creates a canvas-based renderer resolving assets through the given resolver.
func New(assets renderer.Assets) *Renderer {
	return &Renderer{
		assets:       assets,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	meta := result.Meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// TextWidth 实现 layout.Typesetter；字号与返回宽度均为 mm，创建字体面时换算为 pt。
func (r *Renderer) TextWidth(text string, font layout.FontResource, fontSize float64) (float64, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(text), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	// 线条先画，作为文本的背景
	r.drawLines(ctx, page.Lines)
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb, renderer.ResolveFont(tb.Font, resources.Fonts)); err != nil {
			return err
		}
	}
	if err := r.drawImages(ctx, page.Images); err != nil {
		return err
	}
	for _, tb := range page.Footer.Texts {
		if err := r.drawTextBox(ctx, tb, renderer.ResolveFont(tb.Font, resources.Fonts)); err != nil {
			return err
		}
	}
	return nil
}

// drawTextBox 在布局给出的基线上绘制单行文本。
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fontRes layout.FontResource) error {
	face, err := r.fontFace(fontRes, toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}
	ctx.DrawText(tb.X, tb.Baseline, canvas.NewTextLine(face, tb.Content, canvas.Left))
	return nil
}

func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, img := range images {
		if img.Path == "" {
			continue
		}
		blob, err := r.assets.Image(img.Path)
		if err != nil {
			return err
		}
		imgData, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return fmt.Errorf("解码图片 %s 失败: %w", img.Path, err)
		}
		width := img.Width
		if width <= 0 {
			width = float64(imgData.Bounds().Dx()) / 4.0
		}
		dpmm := float64(imgData.Bounds().Dx()) / width
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(img.X, img.Y, imgData, canvas.DPMM(dpmm))
	}
	return nil
}

// drawLines 绘制直线（毫米单位）；虚线拆成若干短线段绘制。
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultLineWidth
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		for _, seg := range dashSegments(ln) {
			p := &canvas.Path{}
			p.MoveTo(0, 0)
			p.LineTo(seg.X2-seg.X1, seg.Y2-seg.Y1)
			ctx.DrawPath(seg.X1, seg.Y1, p)
		}
	}
}

// dashSegments 把水平虚线展开成实线段；非虚线原样返回。
func dashSegments(ln layout.Line) []layout.Line {
	if len(ln.Dash) < 2 || ln.Dash[0] <= 0 || ln.Y1 != ln.Y2 {
		return []layout.Line{ln}
	}
	dash, space := ln.Dash[0], ln.Dash[1]
	var out []layout.Line
	for x := ln.X1; x < ln.X2; x += dash + space {
		end := x + dash
		if end > ln.X2 {
			end = ln.X2
		}
		seg := ln
		seg.X1, seg.X2 = x, end
		out = append(out, seg)
	}
	return out
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	data, err := r.assets.Font(font)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	style := parseFontStyle(font.Style)
	name := font.Name
	if name == "" {
		name = layout.FontRegular
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", font.Src, err)
	}
	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	if strings.Contains(s, "bold") {
		result = canvas.FontBold
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
