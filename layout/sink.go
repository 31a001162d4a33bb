package layout

// pageSink 接收布局引擎产出的元素。正式排版使用 pageCollector 收集全部元素；
// 试排使用 pageCounter，只记录页数并丢弃绘制内容。两者共享同一套排版代码。
type pageSink interface {
	newPage(number int, songID string)
	stampSong(id string)
	appendText(tb TextBox)
	appendLine(ln Line)
	appendImage(img ImageBox)
	appendLink(link LinkBox)
	pageCount() int
}

type pageAccumulator struct {
	number int
	songID string
	texts  []TextBox
	images []ImageBox
	lines  []Line
	links  []LinkBox
}

type pageCollector struct {
	width  float64
	height float64
	margin Margin
	accs   []*pageAccumulator
}

func newPageCollector(style Style) *pageCollector {
	return &pageCollector{
		width:  style.PageWidth,
		height: style.PageHeight,
		margin: style.Margin,
	}
}

func (pc *pageCollector) newPage(number int, songID string) {
	pc.accs = append(pc.accs, &pageAccumulator{number: number, songID: songID})
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		pc.newPage(1, "")
	}
	return pc.accs[len(pc.accs)-1]
}

func (pc *pageCollector) stampSong(id string)   { pc.curr().songID = id }
func (pc *pageCollector) appendText(tb TextBox) { acc := pc.curr(); acc.texts = append(acc.texts, tb) }
func (pc *pageCollector) appendLine(ln Line)    { acc := pc.curr(); acc.lines = append(acc.lines, ln) }
func (pc *pageCollector) appendImage(img ImageBox) {
	acc := pc.curr()
	acc.images = append(acc.images, img)
}
func (pc *pageCollector) appendLink(link LinkBox) {
	acc := pc.curr()
	acc.links = append(acc.links, link)
}
func (pc *pageCollector) pageCount() int { return len(pc.accs) }

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Number: acc.number,
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			SongID: acc.songID,
			Texts:  acc.texts,
			Images: acc.images,
			Lines:  acc.lines,
			Links:  acc.links,
		}
	}
	return out
}

// pageCounter 是试排用的空输出，只数页。
type pageCounter struct {
	pages int
}

func (pc *pageCounter) newPage(int, string)  { pc.pages++ }
func (pc *pageCounter) stampSong(string)     {}
func (pc *pageCounter) appendText(TextBox)   {}
func (pc *pageCounter) appendLine(Line)      {}
func (pc *pageCounter) appendImage(ImageBox) {}
func (pc *pageCounter) appendLink(LinkBox)   {}
func (pc *pageCounter) pageCount() int       { return pc.pages }
