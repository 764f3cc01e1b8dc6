package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/pathtext/fonts"
	"github.com/ByLCY/pathtext/renderer"
	"github.com/ByLCY/pathtext/scene"
)

const (
	defaultStrokeWidth = 0.3 // mm
	defaultDPMM        = 8.0
)

func tracer() tracing.Trace {
	return tracing.Select("pathtext.canvas")
}

// Format 是输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat 解析输出格式，空字符串视为 pdf。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的输出格式：%s（可选 pdf、svg、png）", s)
	}
}

// Renderer draws text-on-path results via github.com/tdewolff/canvas.
// It also measures text for the layout stage, so one instance should serve both.
type Renderer struct {
	baseDir string
	format  Format
	dpmm    float64

	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ scene.Measurer    = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  Format
	DPMM    float64             // 仅 png 使用，每毫米像素数
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving font files.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts, output format and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		dpmm:         opts.DPMM,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.format == "" {
		r.format = FormatPDF
	}
	if r.dpmm <= 0 {
		r.dpmm = defaultDPMM
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				// 使用时才会报错
				tracer().Errorf("读取注入字体 %s 失败: %v", name, err)
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// MeasureText 实现 scene.Measurer。fontSize 为毫米，返回宽度同样为毫米。
func (r *Renderer) MeasureText(content string, font scene.FontResource, fontSize float64) (float64, error) {
	face, err := r.fontFace(font, toPt(fontSize), scene.Color{})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(content), nil
}

// Render 按配置的格式输出。svg 与 png 只能容纳一页，多页时仅输出第一页。
func (r *Renderer) Render(result *scene.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	switch r.format {
	case FormatPDF:
		return r.renderPDF(result)
	case FormatSVG, FormatPNG:
		if len(result.Pages) > 1 {
			tracer().Infof("%s 只输出第 1 页，其余 %d 页被忽略", r.format, len(result.Pages)-1)
		}
		c, err := r.drawCanvas(result.Pages[0], result.Resources)
		if err != nil {
			return nil, err
		}
		if r.format == FormatSVG {
			return encodeSVG(c)
		}
		return r.encodePNG(c)
	default:
		return nil, fmt.Errorf("不支持的输出格式：%s", r.format)
	}
}

func (r *Renderer) renderPDF(result *scene.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	keywords := strings.Join(result.Meta.Keywords, ", ")
	writer.SetInfo(result.Meta.Title, result.Meta.Subject, keywords, result.Meta.Author, result.Meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c, err := r.drawCanvas(page, result.Resources)
		if err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeSVG(c *canvas.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	writer := svg.New(&buf, c.W, c.H, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 SVG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) encodePNG(c *canvas.Canvas) ([]byte, error) {
	img := rasterizer.Draw(c, canvas.DPMM(r.dpmm), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("写入 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCanvas 绘制单页。布局坐标以左上角为原点、y 轴向下，canvas 以左下角为原点，
// 因此所有 y 取 page.Height - y，旋转角取反。
func (r *Renderer) drawCanvas(page scene.Page, resources scene.ResourceSet) (*canvas.Canvas, error) {
	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)

	if page.Background != nil {
		ctx.SetFillColor(colorFromScene(*page.Background))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))
	}
	for _, pl := range page.Polylines {
		strokePolyline(ctx, pl, page.Height)
	}
	for _, tp := range page.TextPaths {
		if tp.Guide != nil {
			strokePolyline(ctx, *tp.Guide, page.Height)
		}
		if err := r.drawTextPath(ctx, tp, resolveFontResource(tp.Font, resources.Fonts), page.Height); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func strokePolyline(ctx *canvas.Context, pl scene.Polyline, height float64) {
	if len(pl.Points) < 2 {
		return
	}
	w := pl.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	p := &canvas.Path{}
	for i, pt := range pl.Points {
		if i == 0 {
			p.MoveTo(pt.X, height-pt.Y)
		} else {
			p.LineTo(pt.X, height-pt.Y)
		}
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(colorFromScene(pl.Color))
	ctx.SetStrokeWidth(w)
	ctx.DrawPath(0, 0, p)
}

// drawTextPath 逐字绘制：平移到字符中心，旋转后以居中对齐的基线绘制。
func (r *Renderer) drawTextPath(ctx *canvas.Context, tp scene.TextPath, fontRes scene.FontResource, height float64) error {
	if len(tp.Placements) == 0 {
		return nil
	}
	face, err := r.fontFace(fontRes, toPt(tp.FontSize), tp.Color)
	if err != nil {
		return err
	}
	for _, pl := range tp.Placements {
		if math.IsNaN(pl.X) || math.IsNaN(pl.Y) || math.IsNaN(pl.Angle) {
			tracer().Debugf("跳过无效坐标的字符 %q", pl.Char)
			continue
		}
		line := canvas.NewTextLine(face, pl.Char, canvas.Center)
		ctx.Push()
		ctx.ComposeView(canvas.Identity.Translate(pl.X, height-pl.Y).Rotate(-pl.Angle * 180 / math.Pi))
		ctx.DrawText(0, 0, line)
		ctx.Pop()
	}
	return nil
}

func (r *Renderer) fontFace(font scene.FontResource, size float64, col scene.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromScene(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font scene.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	err := r.loadFontIntoFamily(family, font.Src, style)
	if err != nil && font.Fallback != "" {
		tracer().Infof("字体 %s 加载失败（%v），改用 %s", font.Name, err, font.Fallback)
		err = r.loadFontIntoFamily(family, font.Fallback, style)
	}
	if err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		tracer().Infof("字体 %s 加载失败（%v），使用默认字体 %s", font.Name, err, fonts.Default)
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, src string, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	switch {
	case strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:"):
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	case strings.HasPrefix(src, "embed:"):
		return fonts.Load(src)
	case strings.HasPrefix(src, "system:"):
		path, err := fonts.Find(src)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in:、embed: 或 system:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback 调用方需持有 fontMu。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("pathtext-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func resolveFontResource(name string, fonts map[string]scene.FontResource) scene.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts["Body"]; ok {
		return font
	}
	for _, font := range fonts {
		return font
	}
	return scene.FontResource{}
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font scene.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Style, font.Fallback)
}

func colorFromScene(c scene.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * scene.MmToPt }
