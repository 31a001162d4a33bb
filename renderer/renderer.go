// Package renderer 定义渲染后端的接口以及后端共用的资源读取。
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/chordbook/fonts"
	"github.com/ByLCY/chordbook/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责测量与绘制；布局必须使用最终渲染它的同一个后端测量文本。
type Backend interface {
	Renderer
	layout.Typesetter
}

// BuiltinPrefix 标记通过 Assets.Images 注入的图片，例如 "builtin:logo"。
const BuiltinPrefix = "builtin:"

// Assets 解析字体与图片资源。相对路径相对 BaseDir 解析。
type Assets struct {
	BaseDir string
	Images  map[string][]byte
}

// Font 读取字体数据，支持 embed:* 内置字体与文件路径。
func (a Assets) Font(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if strings.HasPrefix(font.Src, fonts.EmbedPrefix) {
		return fonts.Load(font.Src)
	}
	return fonts.Load(a.resolve(font.Src))
}

// Image 读取图片数据。
func (a Assets) Image(path string) ([]byte, error) {
	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		blob, found := a.Images[name]
		if !found {
			return nil, fmt.Errorf("找不到内置图片资源 %s%s", BuiltinPrefix, name)
		}
		return blob, nil
	}
	data, err := os.ReadFile(a.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	return data, nil
}

func (a Assets) resolve(path string) string {
	if a.BaseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.BaseDir, path)
}

// ResolveFont 按名称查找字体，找不到时退回常规字体。
func ResolveFont(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts[layout.FontRegular]; ok {
		return font
	}
	return layout.FontResource{Name: name, Src: "embed:" + layout.FontRegular}
}
