package scene

import "github.com/ByLCY/pathtext/textpath"

// BuildOptions 配置布局阶段所需的依赖，例如测量文字宽度的后端。
type BuildOptions struct {
	Measurer     Measurer
	Segmentation textpath.Segmentation // 默认按 Unicode 码点逐字排布
	Debug        DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Measurer 返回一段文字在指定字体与字号（mm）下的宽度（mm）。
type Measurer interface {
	MeasureText(content string, font FontResource, fontSize float64) (float64, error)
}
