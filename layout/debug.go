package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeDebug 把排版结果连同分页规划编码为缩进 JSON。
// 输出可直接与 PDF 对照，用于排查分页问题。
func EncodeDebug(w io.Writer, res *Result) error {
	if res == nil {
		return fmt.Errorf("排版结果为空")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("序列化布局结果失败: %w", err)
	}
	return nil
}
