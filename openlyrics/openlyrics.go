// Package openlyrics 读取 OpenLyrics XML 歌曲文件（http://openlyrics.info）。
package openlyrics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/chordbook/song"
)

// verseNames 把 OpenLyrics 的段落代号映射为显示名称，例如 v1 → Strophe。
var verseNames = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`^c[0-9]+`), "Refrain"},
	{regexp.MustCompile(`^b[0-9]+`), "Bridge"},
	{regexp.MustCompile(`^v[0-9]+`), "Strophe"},
}

// chordTag 是 OpenLyrics 中标记和弦的 tag 名称。
const chordTag = "c"

var apostrophe = strings.NewReplacer("â€™", "'")

func query(expr string) string {
	// 不依赖命名空间前缀，按本地名匹配
	parts := strings.Split(expr, "/")
	for i, p := range parts {
		if p != "" {
			parts[i] = "*[local-name()='" + p + "']"
		}
	}
	return strings.Join(parts, "/")
}

var (
	titleQuery  = query("//properties/titles/title")
	authorQuery = query("//properties/authors/author")
	verseQuery  = query("//lyrics/verse")
	linesQuery  = query("lines")
)

// ReadFile 读取一个 OpenLyrics 文件。
func ReadFile(path string) (*song.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sg, nil
}

// Parse 解析 OpenLyrics 文档。缺少标题或歌词时返回 song.ErrMalformedInput，没有文本的段落会被丢弃。
func Parse(r io.Reader) (*song.Song, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析 XML 失败: %v", song.ErrMalformedInput, err)
	}

	titleNode, err := xmlquery.Query(doc, titleQuery)
	if err != nil {
		return nil, err
	}
	if titleNode == nil || strings.TrimSpace(titleNode.InnerText()) == "" {
		return nil, fmt.Errorf("%w: 缺少标题", song.ErrMalformedInput)
	}
	sg := &song.Song{Title: cleanTitle(titleNode.InnerText())}

	authors, err := xmlquery.QueryAll(doc, authorQuery)
	if err != nil {
		return nil, err
	}
	for _, a := range authors {
		if name := strings.TrimSpace(a.InnerText()); name != "" {
			sg.Authors = append(sg.Authors, name)
		}
	}

	verseNodes, err := xmlquery.QueryAll(doc, verseQuery)
	if err != nil {
		return nil, err
	}
	if len(verseNodes) == 0 {
		return nil, fmt.Errorf("%w: 歌曲 %q 缺少歌词", song.ErrMalformedInput, sg.Title)
	}

	var names []string
	for _, vn := range verseNodes {
		text, err := verseText(vn)
		if err != nil {
			return nil, err
		}
		v, err := song.NewVerse(vn.SelectAttr("name"), text)
		if errors.Is(err, song.ErrEmptyVerse) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sg.Verses = append(sg.Verses, v)
		names = append(names, displayName(v.Heading))
	}
	for i, name := range numberDuplicates(names) {
		sg.Verses[i].Heading = name
		sg.Verses[i].Kind = song.KindOf(name)
	}
	return sg, nil
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	return norm.NFC.String(strings.ReplaceAll(title, "/", "_"))
}

// verseText 拼接段落中所有 <lines> 的文本，和弦写成 [X]。
func verseText(verse *xmlquery.Node) (string, error) {
	linesNodes, err := xmlquery.QueryAll(verse, linesQuery)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, ln := range linesNodes {
		if i > 0 {
			b.WriteString("\n")
		}
		writeInline(&b, ln)
	}
	var out []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		out = append(out, line)
	}
	return norm.NFC.String(apostrophe.Replace(strings.Join(out, "\n"))), nil
}

func writeInline(b *strings.Builder, n *xmlquery.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			// 源文件中的排版换行不是歌词换行，只有 <br/> 才换行
			b.WriteString(strings.ReplaceAll(child.Data, "\n", " "))
		case xmlquery.ElementNode:
			switch child.Data {
			case "br":
				b.WriteString("\n")
			case "comment":
			case "tag":
				if child.SelectAttr("name") == chordTag {
					b.WriteRune(song.ChordStart)
					b.WriteString(strings.TrimSpace(child.InnerText()))
					b.WriteRune(song.ChordEnd)
					continue
				}
				writeInline(b, child)
			case "chord":
				if name := child.SelectAttr("name"); name != "" {
					b.WriteRune(song.ChordStart)
					b.WriteString(name)
					b.WriteRune(song.ChordEnd)
				}
				writeInline(b, child)
			default:
				writeInline(b, child)
			}
		}
	}
}

func displayName(code string) string {
	for _, vn := range verseNames {
		if vn.pattern.MatchString(code) {
			return vn.name
		}
	}
	return code
}

// numberDuplicates 为重复的段落名编号："Strophe" 出现三次时依次变为 "Strophe 1" 到 "Strophe 3"。
func numberDuplicates(names []string) []string {
	total := map[string]int{}
	for _, n := range names {
		total[n]++
	}
	seen := map[string]int{}
	out := make([]string, len(names))
	for i, n := range names {
		if total[n] < 2 {
			out[i] = n
			continue
		}
		seen[n]++
		out[i] = n + " " + strconv.Itoa(seen[n])
	}
	return out
}
