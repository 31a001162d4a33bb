package dsl

import (
	"bufio"
	"io"

	"github.com/ByLCY/chordbook/song"
)

// Format 把歌曲写回和弦文本格式，段落之间空一行。
func Format(w io.Writer, sg *song.Song) error {
	bw := bufio.NewWriter(w)
	for i, v := range sg.Verses {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(HeadingStart + " " + v.Heading + HeadingEnd + "\n")
		for _, l := range v.Lines {
			bw.WriteString(l.String())
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}
