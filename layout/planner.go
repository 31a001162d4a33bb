package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/chordbook/song"
)

// ErrUnplanned 表示在分页规划之前就尝试输出页码或链接。
var ErrUnplanned = errors.New("歌曲尚未分配起始页")

// PlannedSong 记录一首歌的试排结果与分配到的起始页。
type PlannedSong struct {
	Song      *song.Song `json:"-"`
	Title     string     `json:"title"`
	Pages     int        `json:"pages"`
	StartPage int        `json:"startPage"`
	Height    float64    `json:"height"`
}

// Plan 是整本歌本的分页规划。
type Plan struct {
	Songs      []PlannedSong `json:"songs"`
	IndexPages int           `json:"indexPages"`
	// Offset 是第一首歌可以开始的页号（标题页 + 目录页之后）。
	Offset int `json:"offset"`
	// TotalPages 是排完最后一首歌时的页号。
	TotalPages int `json:"totalPages"`
}

// MeasureSong 在丢弃输出的画布上完整排版一首歌，返回它占用的页数。
// 每首歌都从第 1 页单独试排，结果与它最终所在的页号无关。
func MeasureSong(sg *song.Song, opts BuildOptions) (int, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return 0, err
	}
	return measureSong(sg, opts)
}

func measureSong(sg *song.Song, opts BuildOptions) (int, error) {
	counter := &pageCounter{}
	c := newContext(opts, counter)
	if _, err := renderSong(c, sg, false, opts.Overflow); err != nil {
		return 0, err
	}
	return counter.pageCount(), nil
}

// AssignPages 按顺序为每首歌分配起始页。counter 从 offset 开始；
// even 为 true 时，多页歌曲若将落在奇数页，先空出一页，使其从偶数页开始。
func AssignPages(counts []int, offset int, even bool) []int {
	starts := make([]int, len(counts))
	current := offset
	for i, n := range counts {
		if even && n > 1 && current%2 == 1 {
			current++
		}
		starts[i] = current
		current += n
	}
	return starts
}

// PlanBook 试排目录与全部歌曲，计算并写入每首歌的 StartPage。
func PlanBook(songs []*song.Song, opts BuildOptions) (*Plan, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return planBook(songs, opts)
}

func planBook(songs []*song.Song, opts BuildOptions) (*Plan, error) {
	indexPages := opts.IndexPages
	if indexPages <= 0 {
		n, err := measureIndex(songs, opts)
		if err != nil {
			return nil, err
		}
		indexPages = n
	}

	plan := &Plan{IndexPages: indexPages, Offset: indexPages + 2}
	counts := make([]int, len(songs))
	for i, sg := range songs {
		n, err := measureSong(sg, opts)
		if err != nil {
			return nil, fmt.Errorf("试排歌曲 %q 失败: %w", sg.Title, err)
		}
		counts[i] = n
	}

	starts := AssignPages(counts, plan.Offset, opts.EvenPages)
	plan.TotalPages = plan.Offset - 1
	for i, sg := range songs {
		sg.StartPage = starts[i]
		ps := PlannedSong{Song: sg, Title: sg.Title, Pages: counts[i], StartPage: starts[i], Height: opts.Style.SongHeight(sg)}
		plan.Songs = append(plan.Songs, ps)
		plan.TotalPages = starts[i] + counts[i] - 1
		opts.Logger.Debug("Song planned",
			zap.String("song", sg.Heading()),
			zap.Int("pages", ps.Pages),
			zap.Int("start", ps.StartPage),
			zap.Float64("height", ps.Height))
	}
	return plan, nil
}
