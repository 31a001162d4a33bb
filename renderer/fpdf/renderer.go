// Package fpdfrenderer 使用 codeberg.org/go-pdf/fpdf 输出 PDF，是默认后端。
// 与 canvas 后端相比，它支持文档内链接，目录条目可以跳转到歌曲首页。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"github.com/h2non/filetype"

	"github.com/ByLCY/chordbook/layout"
	"github.com/ByLCY/chordbook/renderer"
)

const defaultLineWidth = 0.2

// Renderer draws layout results via go-pdf/fpdf.
type Renderer struct {
	assets renderer.Assets

	mu      sync.Mutex
	blobs   map[string][]byte
	measure *fpdf.Fpdf
	loaded  map[string]bool
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a fpdf-based renderer resolving assets through the given resolver.
func New(assets renderer.Assets) *Renderer {
	return &Renderer{
		assets: assets,
		blobs:  map[string][]byte{},
		loaded: map[string]bool{},
	}
}

// TextWidth 实现 layout.Typesetter；字号与返回宽度均为 mm。
func (r *Renderer) TextWidth(text string, font layout.FontResource, fontSize float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.measure == nil {
		r.measure = newDocument(layout.DefaultStyle().PageWidth, layout.DefaultStyle().PageHeight)
	}
	family, err := r.useFont(r.measure, r.loaded, font)
	if err != nil {
		return 0, err
	}
	r.measure.SetFont(family, "", fontSize*layout.MmToPt)
	w := r.measure.GetStringWidth(text)
	if err := r.measure.Error(); err != nil {
		return 0, fmt.Errorf("测量文本失败: %w", err)
	}
	return w, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	first := result.Pages[0]
	doc := newDocument(first.Width, first.Height)
	applyMeta(doc, result.Meta)

	d := &drawer{r: r, doc: doc, fonts: result.Resources.Fonts, loaded: map[string]bool{}, links: map[int]int{}}
	for _, page := range result.Pages {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		if err := d.drawPage(page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", page.Number, err)
		}
	}
	if len(d.links) > 0 && d.maxTarget > len(result.Pages) {
		return nil, fmt.Errorf("链接目标第 %d 页超出页数 %d", d.maxTarget, len(result.Pages))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func newDocument(w, h float64) *fpdf.Fpdf {
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr:        "mm",
		OrientationStr: "P",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	return doc
}

func applyMeta(doc *fpdf.Fpdf, meta layout.DocumentMeta) {
	doc.SetTitle(meta.Title, true)
	doc.SetAuthor(meta.Author, true)
	doc.SetSubject(meta.Subject, true)
	doc.SetCreator(meta.Creator, true)
	doc.SetKeywords(strings.Join(meta.Keywords, ", "), true)
}

// useFont 确保字体已注册到 doc，返回 fpdf 中的字体族名。
// 每个字体资源注册为独立的字体族（样式为空），避免 fpdf 自行合成粗体。
func (r *Renderer) useFont(doc *fpdf.Fpdf, loaded map[string]bool, font layout.FontResource) (string, error) {
	key := fontCacheKey(font)
	family := familyName(font)
	if loaded[key] {
		return family, nil
	}
	data, ok := r.blobs[key]
	if !ok {
		var err error
		if data, err = r.assets.Font(font); err != nil {
			return "", err
		}
		r.blobs[key] = data
	}
	doc.AddUTF8FontFromBytes(family, "", data)
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("加载字体 %s 失败: %w", font.Src, err)
	}
	loaded[key] = true
	return family, nil
}

type drawer struct {
	r         *Renderer
	doc       *fpdf.Fpdf
	fonts     map[string]layout.FontResource
	loaded    map[string]bool
	links     map[int]int
	images    int
	maxTarget int
}

func (d *drawer) drawPage(page layout.Page) error {
	for _, ln := range page.Lines {
		d.drawLine(ln)
	}
	for _, tb := range page.Texts {
		if err := d.drawText(tb); err != nil {
			return err
		}
	}
	for _, img := range page.Images {
		if err := d.drawImage(img); err != nil {
			return err
		}
	}
	for _, link := range page.Links {
		d.doc.Link(link.X, link.Y, link.Width, link.Height, d.link(link.Target))
	}
	for _, tb := range page.Footer.Texts {
		if err := d.drawText(tb); err != nil {
			return err
		}
	}
	return d.doc.Error()
}

func (d *drawer) drawText(tb layout.TextBox) error {
	family, err := d.r.useFont(d.doc, d.loaded, renderer.ResolveFont(tb.Font, d.fonts))
	if err != nil {
		return err
	}
	d.doc.SetFont(family, "", tb.FontSize*layout.MmToPt)
	d.doc.SetTextColor(tb.Color.R, tb.Color.G, tb.Color.B)
	d.doc.Text(tb.X, tb.Baseline, tb.Content)
	return nil
}

func (d *drawer) drawLine(ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultLineWidth
	}
	d.doc.SetLineWidth(w)
	d.doc.SetDrawColor(ln.Color.R, ln.Color.G, ln.Color.B)
	d.doc.SetDashPattern(ln.Dash, 0)
	d.doc.Line(ln.X1, ln.Y1, ln.X2, ln.Y2)
	d.doc.SetDashPattern(nil, 0)
}

// drawImage 按宽度缩放图片，高度保持原始比例。
func (d *drawer) drawImage(img layout.ImageBox) error {
	if img.Path == "" {
		return nil
	}
	blob, err := d.r.assets.Image(img.Path)
	if err != nil {
		return err
	}
	imageType, err := detectImageType(blob)
	if err != nil {
		return fmt.Errorf("图片 %s: %w", img.Path, err)
	}
	d.images++
	name := fmt.Sprintf("img%d", d.images)
	opts := fpdf.ImageOptions{ImageType: imageType}
	d.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(blob))
	d.doc.ImageOptions(name, img.X, img.Y, img.Width, 0, false, opts, 0, "")
	return d.doc.Error()
}

// link 返回跳转到 target 页顶部的链接 id，同一目标页复用同一个链接。
func (d *drawer) link(target int) int {
	if id, ok := d.links[target]; ok {
		return id
	}
	id := d.doc.AddLink()
	d.doc.SetLink(id, 0, target)
	d.links[target] = id
	if target > d.maxTarget {
		d.maxTarget = target
	}
	return id
}

// detectImageType 根据文件内容判断 fpdf 支持的图片类型。
func detectImageType(blob []byte) (string, error) {
	kind, err := filetype.Match(blob)
	if err != nil {
		return "", err
	}
	switch kind.Extension {
	case "png", "gif":
		return kind.Extension, nil
	case "jpg", "jpeg":
		return "jpg", nil
	default:
		return "", fmt.Errorf("不支持的图片类型 %q", kind.Extension)
	}
}

func familyName(font layout.FontResource) string {
	name := strings.ToLower(font.Name)
	if name == "" {
		name = strings.ToLower(layout.FontRegular)
	}
	return name
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}
