// Package library 把一个目录中的歌曲文件读入为有序、已编号的歌曲列表。
package library

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/chordbook/dsl"
	"github.com/ByLCY/chordbook/openlyrics"
	"github.com/ByLCY/chordbook/song"
)

// Numbering 决定歌曲编号方式。
type Numbering string

const (
	// NumberingAlpha 按首字母分组编号（A1, A2, B1 …），首字母变化时序号重置。
	NumberingAlpha Numbering = "alpha"
	// NumberingNumbers 全书连续编号，首字母仍保留在编号中。
	NumberingNumbers Numbering = "numbers"
)

const (
	DefaultIndexFile = "index.txt"
	sheetExt         = ".txt"
	openLyricsExt    = ".xml"
)

// Options 配置歌曲目录的读取。
type Options struct {
	// IndexFile 是目录中列出歌曲顺序的文件名；不存在时按自然排序读取全部歌曲文件。
	IndexFile string
	Numbering Numbering
	Logger    *zap.Logger
}

var (
	hyphenJoin = regexp.MustCompile(` +- +`)
	spaceRun   = regexp.MustCompile(` +`)
	mojibake   = strings.NewReplacer("â€™", "'")
)

// Preprocess 清理和弦文本：只保留第一个连续三个换行之前的内容，修正乱码撇号，
// 去掉 " - " 断词连接，合并连续空格，并做 NFC 规范化。
func Preprocess(text string) string {
	text, _, _ = strings.Cut(text, "\n\n\n")
	text = mojibake.Replace(text)
	text = hyphenJoin.ReplaceAllString(text, "")
	text = spaceRun.ReplaceAllString(text, " ")
	return norm.NFC.String(text)
}

// Load 读取 dir 中的全部歌曲并编号。任何一首歌读取失败都会使整个调用失败，错误会合并返回。
func Load(dir string, opts Options) ([]*song.Song, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IndexFile == "" {
		opts.IndexFile = DefaultIndexFile
	}
	if opts.Numbering == "" {
		opts.Numbering = NumberingAlpha
	}

	names, err := listSongs(dir, opts.IndexFile)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("目录 %s 中没有歌曲", dir)
	}

	var (
		songs []*song.Song
		errs  error
	)
	for _, name := range names {
		sg, err := readSong(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		opts.Logger.Debug("Song loaded", zap.String("file", name), zap.Int("verses", len(sg.Verses)))
		songs = append(songs, sg)
	}
	if errs != nil {
		return nil, errs
	}
	if err := AssignLabels(songs, opts.Numbering); err != nil {
		return nil, err
	}
	opts.Logger.Info("Library loaded", zap.String("dir", dir), zap.Int("songs", len(songs)))
	return songs, nil
}

// listSongs 返回按顺序排列的歌曲文件名。
func listSongs(dir, indexFile string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, indexFile))
	switch {
	case err == nil:
		defer f.Close()
		return readIndex(f)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("读取歌曲索引失败: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取歌曲目录失败: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == indexFile {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case sheetExt, openLyricsExt:
			names = append(names, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(names))
	return names, nil
}

// readIndex 每行一个歌曲名，# 开头的行是注释；没有扩展名的条目补上 .txt。
func readIndex(f *os.File) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch strings.ToLower(filepath.Ext(line)) {
		case sheetExt, openLyricsExt:
		default:
			line += sheetExt
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("读取歌曲索引失败: %w", err)
	}
	return names, nil
}

func readSong(path string) (*song.Song, error) {
	if strings.EqualFold(filepath.Ext(path), openLyricsExt) {
		return openlyrics.ReadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dsl.ParseString(TitleOf(path), Preprocess(string(data)))
}

// TitleOf 由文件名得到歌曲标题（去掉最后一个扩展名）。
func TitleOf(path string) string {
	base := filepath.Base(path)
	return norm.NFC.String(strings.TrimSuffix(base, filepath.Ext(base)))
}

// AssignLabels 按列表顺序为歌曲编号。
func AssignLabels(songs []*song.Song, numbering Numbering) error {
	switch numbering {
	case NumberingAlpha:
		var last rune
		n := 0
		for _, sg := range songs {
			letter := song.LetterOf(sg.Title)
			if letter == last {
				n++
			} else {
				n = 1
				last = letter
			}
			sg.Label = song.Label{Letter: letter, Number: n}
		}
	case NumberingNumbers:
		for i, sg := range songs {
			sg.Label = song.Label{Letter: song.LetterOf(sg.Title), Number: i + 1}
		}
	default:
		return fmt.Errorf("未知的编号方式 %q", numbering)
	}
	return nil
}
