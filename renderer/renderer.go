package renderer

import "github.com/ByLCY/pathtext/scene"

// Renderer 将布局结果输出为最终文件，例如 PDF、SVG 或 PNG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *scene.Result) ([]byte, error)
}
