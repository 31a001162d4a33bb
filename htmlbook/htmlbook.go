// Package htmlbook 把歌本导出为单个 HTML 页面：开头是链接到各歌曲的目录，
// 和弦以 flex 布局排在对应歌词上方。
package htmlbook

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gosimple/slug"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/chordbook/song"
)

const nbsp = "\u00a0"

const stylesheet = `
span.line-segment {
    display: inline-flex;
    flex-direction: column;
}
div.line {
    display: flex;
    align-items: end;
}
span.chord {
    font-weight: bold;
}
p.note {
    font-size: smaller;
}
`

// Options 配置 HTML 导出。
type Options struct {
	Title      string
	Stylesheet string // 额外的样式表链接，可为空
}

// Write 输出完整的 HTML 文档。
func Write(w io.Writer, songs []*song.Song, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Index"
	}
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), opts.Title))
	if opts.Stylesheet != "" {
		head.AppendChild(element(atom.Link, "rel", "stylesheet", "href", opts.Stylesheet))
	}
	head.AppendChild(withText(element(atom.Style, "type", "text/css"), stylesheet))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1, "id", "index"), opts.Title))

	ids := anchors(songs)
	nav := element(atom.Nav)
	for i, sg := range songs {
		link := element(atom.A, "href", "#"+ids[i])
		link.AppendChild(withText(element(atom.H2, "id", "index-"+ids[i]), sg.Heading()))
		nav.AppendChild(link)
	}
	body.AppendChild(nav)

	for i, sg := range songs {
		body.AppendChild(songNode(sg, ids[i]))
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("写入 HTML 失败: %w", err)
	}
	return nil
}

// anchors 为每首歌生成唯一的锚点 id。
func anchors(songs []*song.Song) []string {
	seen := map[string]int{}
	ids := make([]string, len(songs))
	for i, sg := range songs {
		id := slug.Make(sg.Heading())
		if id == "" {
			id = "song"
		}
		seen[id]++
		if n := seen[id]; n > 1 {
			id += "-" + strconv.Itoa(n)
		}
		ids[i] = id
	}
	return ids
}

func songNode(sg *song.Song, id string) *html.Node {
	sec := element(atom.Section, "class", "song")
	back := element(atom.A, "href", "#index-"+id)
	back.AppendChild(withText(element(atom.H2, "id", id), sg.Heading()))
	sec.AppendChild(back)

	for _, v := range sg.Verses {
		switch v.Kind {
		case song.KindPageBreak:
			if len(v.Lines) == 0 {
				continue
			}
		case song.KindNote:
		default:
			sec.AppendChild(withText(element(atom.H3), v.Heading))
		}
		class := "verse"
		if v.Kind == song.KindNote {
			class = "note"
		}
		p := element(atom.P, "class", class)
		for _, l := range v.Lines {
			p.AppendChild(lineNode(l))
		}
		sec.AppendChild(p)
	}
	return sec
}

// lineNode 把一行拆成若干 line-segment：每个和弦与其后的歌词组成一组，上下排列。
func lineNode(l song.Line) *html.Node {
	div := element(atom.Div, "class", "line")
	var seg *html.Node
	for i, s := range l.Segments {
		if s.Chord || i == 0 {
			seg = element(atom.Span, "class", "line-segment")
			div.AppendChild(seg)
		}
		class := "text"
		if s.Chord {
			class = "chord"
		}
		seg.AppendChild(withText(element(atom.Span, "class", class), s.Text+nbsp))
	}
	return div
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
