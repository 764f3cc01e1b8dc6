/*
Package scene 将 DSL 场景描述转换为可直接渲染的结果：页面、装饰折线，
以及沿折线排布的文字（每个字符的位置与旋转角）。

文字宽度由外部注入的 Measurer 提供（通常是渲染器），
逐字排布委托给 textpath 包。坐标统一为毫米，原点在页面左上角，y 轴向下。
*/
package scene

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pathtext.scene'.
func tracer() tracing.Trace {
	return tracing.Select("pathtext.scene")
}
