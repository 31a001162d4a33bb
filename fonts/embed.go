// Package fonts 提供内置字体数据。
package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// EmbedPrefix 标记内置字体，例如 "embed:Bold"。
const EmbedPrefix = "embed:"

var builtin = map[string][]byte{
	"Regular":    goregular.TTF,
	"Bold":       gobold.TTF,
	"Italic":     goitalic.TTF,
	"BoldItalic": gobolditalic.TTF,
	"Mono":       gomono.TTF,
}

// Load 返回字体的 TTF 数据。src 为 "embed:<名称>" 时读取内置 Go 字体，否则按文件路径读取。
func Load(src string) ([]byte, error) {
	if name, ok := strings.CutPrefix(src, EmbedPrefix); ok {
		data, found := builtin[name]
		if !found {
			return nil, fmt.Errorf("未知的内置字体 %q，可选: %s", name, strings.Join(Names(), ", "))
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// Names 列出全部内置字体名称。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
