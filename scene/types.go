package scene

import "github.com/ByLCY/pathtext/textpath"

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:<内置字体>、system:<系统字体文件> 或 built-in:<注入字体>。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸与最终可以直接渲染的元素。
type Page struct {
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Background *Color     `json:"background,omitempty"`
	Polylines  []Polyline `json:"polylines,omitempty"`
	TextPaths  []TextPath `json:"textPaths"`
}

// Polyline 是一条装饰折线（单位 mm）。
type Polyline struct {
	Points textpath.Path `json:"points"`
	Color  Color         `json:"color"`
	Width  float64       `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// TextPath 是一段沿折线排布的文字，Placements 按绘制顺序保存每个字符的中心点与旋转角（弧度）。
type TextPath struct {
	Content      string               `json:"content"`
	Font         string               `json:"font"`
	FontSize     float64              `json:"fontSize"` // mm
	Color        Color                `json:"color"`
	Align        string               `json:"align"`
	Segmentation string               `json:"segmentation"`
	Path         textpath.Path        `json:"path"`
	PathLength   float64              `json:"pathLength"`
	TextWidth    float64              `json:"textWidth"`
	Overflow     bool                 `json:"overflow,omitempty"` // 文字总宽超过路径长度，末尾字符会外推到路径之外
	Guide        *Polyline            `json:"guide,omitempty"`
	Placements   []textpath.Placement `json:"placements"`
	Debug        *TextPathDebug       `json:"debug,omitempty"`
}

// TextPathDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextPathDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize *RawLengthJSON  `json:"fontSize,omitempty"`
	Path     []RawLengthJSON `json:"path,omitempty"` // x0, y0, x1, y1, ...
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存文档元信息（写入 PDF Info）。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
