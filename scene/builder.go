package scene

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/pathtext/binding"
	"github.com/ByLCY/pathtext/dsl"
	"github.com/ByLCY/pathtext/fonts"
	"github.com/ByLCY/pathtext/textpath"
)

const (
	defaultFontSizePt = 12.0
	defaultGuideWidth = 0.2
)

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// Build 根据 DSL AST 生成页面、折线与沿路径排布的文字。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("scene: 缺少测量后端 Measurer")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Resources: res,
		Meta:      collectMeta(doc),
	}
	for _, section := range doc.Sections {
		if section.Page == nil {
			continue
		}
		page, err := buildPage(section.Page, res, data, opts)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", len(result.Pages)+1, err)
		}
		result.Pages = append(result.Pages, page)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	return result, nil
}

func buildPage(section *dsl.PageSection, res ResourceSet, data any, opts BuildOptions) (Page, error) {
	width, height, rest, err := resolvePageSize(section.Params)
	if err != nil {
		return Page{}, err
	}
	page := Page{Width: width, Height: height}
	attrs := pairs(rest)
	if v := attrs["background"]; v != "" {
		c := resolveColor(v, res)
		page.Background = &c
	}
	if section.Block == nil {
		return page, nil
	}

	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		switch strings.ToLower(cmd.Name) {
		case "textpath":
			tp, err := handleTextPath(cmd, res, data, page, opts)
			if err != nil {
				return Page{}, fmt.Errorf("textpath（第 %d 行）: %w", cmd.Pos.Line, err)
			}
			page.TextPaths = append(page.TextPaths, tp)
		case "polyline":
			pl, err := handlePolyline(cmd, res, data, page)
			if err != nil {
				return Page{}, fmt.Errorf("polyline（第 %d 行）: %w", cmd.Pos.Line, err)
			}
			page.Polylines = append(page.Polylines, pl)
		default:
			// 其余命令暂未实现，忽略即可
			tracer().Debugf("ignoring unknown command %q at line %d", cmd.Name, cmd.Pos.Line)
		}
	}
	return page, nil
}

func handleTextPath(cmd *dsl.Command, res ResourceSet, data any, page Page, opts BuildOptions) (TextPath, error) {
	if cmd.Block == nil {
		return TextPath{}, fmt.Errorf("缺少内容块")
	}
	styleName, attrs := parseArgs(cmd.Args, res.Styles)
	for k, v := range blockAttributes(cmd.Block) {
		attrs[k] = v
	}
	attrs, err := mergeStyleAttributes(styleName, attrs, res.Styles)
	if err != nil {
		return TextPath{}, err
	}

	content := extractText(cmd.Block)
	if content == "" {
		return TextPath{}, fmt.Errorf("缺少文本内容")
	}
	content = binding.Interpolate(content, data)
	if !strings.EqualFold(attrs["normalize"], "none") {
		content = norm.NFC.String(content)
	}

	path, rawPath, err := resolvePath(cmd.Block, data, page)
	if err != nil {
		return TextPath{}, err
	}

	font, err := resolveFontResource(attrs["font"], res)
	if err != nil {
		return TextPath{}, err
	}
	sizeLen := parseFontSize(attrs["size"])
	fontSize := sizeLen.Or(UnitPT).Resolve(defaultFontSizePt * PtToMm)

	seg := opts.Segmentation
	if v := attrs["segmentation"]; v != "" {
		seg = textpath.ParseSegmentation(v)
	}
	align := textpath.ParseAlign(attrs["align"])

	// measure 不能返回错误，这里记录第一个错误并在排布结束后返回。
	var measureErr error
	measure := func(s string) float64 {
		w, err := opts.Measurer.MeasureText(s, font, fontSize)
		if err != nil && measureErr == nil {
			measureErr = err
		}
		return w
	}
	fragments := textpath.Split(content, seg)
	placements := textpath.PlaceFragments(fragments, path, measure, align)
	textWidth := measure(content)
	if measureErr != nil {
		return TextPath{}, fmt.Errorf("测量文字宽度失败: %w", measureErr)
	}

	tp := TextPath{
		Content:      content,
		Font:         font.Name,
		FontSize:     fontSize,
		Color:        resolveColor(attrs["color"], res),
		Align:        align.String(),
		Segmentation: seg.String(),
		Path:         path,
		PathLength:   path.Length(),
		TextWidth:    textWidth,
		Placements:   placements,
	}
	if tp.TextWidth > tp.PathLength {
		tp.Overflow = true
		tracer().Infof("text %q (%.2fmm) is longer than its path (%.2fmm)", content, tp.TextWidth, tp.PathLength)
	}
	if v := attrs["guide"]; v != "" && !strings.EqualFold(v, "none") {
		tp.Guide = &Polyline{
			Points: path,
			Color:  resolveColor(v, res),
			Width:  parseLength(attrs["guide-width"], defaultGuideWidth),
		}
	}
	if opts.Debug.RawUnits {
		raw := &RawUnits{Path: rawPath}
		if sizeLen.Unit != UnitNone {
			j := sizeLen.JSON()
			raw.FontSize = &j
		}
		tp.Debug = &TextPathDebug{RawUnits: raw}
	}
	tracer().Debugf("placed %d fragments of %q along %d points", len(placements), content, len(path))
	return tp, nil
}

func handlePolyline(cmd *dsl.Command, res ResourceSet, data any, page Page) (Polyline, error) {
	if cmd.Block == nil {
		return Polyline{}, fmt.Errorf("缺少 path 定义")
	}
	_, attrs := parseArgs(cmd.Args, nil)
	for k, v := range blockAttributes(cmd.Block) {
		attrs[k] = v
	}
	path, _, err := resolvePath(cmd.Block, data, page)
	if err != nil {
		return Polyline{}, err
	}
	c := defaultTextColor
	if v := attrs["color"]; v != "" {
		c = resolveColor(v, res)
	}
	return Polyline{
		Points: path,
		Color:  c,
		Width:  parseLength(attrs["width"], defaultGuideWidth),
	}, nil
}

// resolvePath 读取块内的 path 赋值：字面量坐标数组或绑定到 data 的表达式。
// 百分比坐标按页面宽（x）与高（y）换算。
func resolvePath(block *dsl.Block, data any, page Page) (textpath.Path, []RawLengthJSON, error) {
	var value *dsl.Value
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil && strings.EqualFold(stmt.Assignment.Key, "path") {
			value = stmt.Assignment.Value
		}
	}
	if value == nil {
		return nil, nil, fmt.Errorf("缺少 path 定义")
	}

	var (
		path textpath.Path
		raw  []RawLengthJSON
	)
	switch {
	case value.Array != nil:
		for i, item := range value.Array.Values {
			if item.Array == nil || len(item.Array.Values) != 2 {
				return nil, nil, fmt.Errorf("path 第 %d 个点应为 [x, y]", i)
			}
			x, okX := valueLength(item.Array.Values[0])
			y, okY := valueLength(item.Array.Values[1])
			if !okX || !okY {
				return nil, nil, fmt.Errorf("path 第 %d 个点包含非数字坐标", i)
			}
			path = append(path, textpath.Pt(x.Resolve(page.Width), y.Resolve(page.Height)))
			raw = append(raw, x.JSON(), y.JSON())
		}
	case value.Expr != nil:
		expr := value.Expr.String()
		pts, err := binding.Points(data, expr)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range pts {
			path = append(path, textpath.Pt(p[0], p[1]))
		}
	default:
		return nil, nil, fmt.Errorf("path 必须是坐标数组或数据路径")
	}

	if err := validatePath(path); err != nil {
		return nil, nil, err
	}
	return path, raw, nil
}

// validatePath 在进入排布算法之前拒绝退化路径（排布算法本身不做校验）。
func validatePath(path textpath.Path) error {
	if len(path) < 2 {
		return fmt.Errorf("path 至少需要 2 个点，实际 %d 个", len(path))
	}
	for i := 1; i < len(path); i++ {
		if path[i] == path[i-1] {
			return fmt.Errorf("path 第 %d 与第 %d 个点重合 %s", i-1, i, path[i])
		}
	}
	return nil
}

func valueLength(v *dsl.Value) (Length, bool) {
	if v == nil || v.Number == nil {
		return Length{}, false
	}
	return ParseRawLengthStr(*v.Number)
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("color %s: %w", name, err)
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts["Body"] = FontResource{
			Name:   "Body",
			Src:    "embed:" + fonts.Default,
			Family: "Body",
		}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "pathtext",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
		case "style":
			font.Style = val
		case "family":
			font.Family = val
		case "fallback":
			font.Fallback = val
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 2 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		if len(cmd.Args) >= 3 {
			style.Extends = cmd.Args[2].Value
		}
	}
	if cmd.Block == nil {
		return style
	}
	for k, v := range blockAttributes(cmd.Block) {
		style.Props[k] = v
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// resolvePageSize 支持 `page A4 [landscape]` 与 `page 120mm 60mm` 两种写法，返回剩余参数。
func resolvePageSize(params []*dsl.Lexeme) (float64, float64, []*dsl.Lexeme, error) {
	if len(params) == 0 {
		return 0, 0, nil, fmt.Errorf("page 缺少纸张尺寸")
	}
	var width, height float64
	rest := params[1:]
	if base, ok := pagePresets[strings.ToUpper(params[0].Value)]; ok {
		width, height = base[0], base[1]
	} else {
		w, okW := ParseRawLengthStr(params[0].Value)
		if !okW || w.Unit == UnitPercent || len(params) < 2 {
			return 0, 0, nil, fmt.Errorf("暂不支持的纸张尺寸：%s", params[0].Value)
		}
		h, okH := ParseRawLengthStr(params[1].Value)
		if !okH || h.Unit == UnitPercent {
			return 0, 0, nil, fmt.Errorf("page 高度无法解析：%s", params[1].Value)
		}
		width, height = w.ToMM(), h.ToMM()
		rest = params[2:]
	}
	if width <= 0 || height <= 0 {
		return 0, 0, nil, fmt.Errorf("page 尺寸必须为正数：%gx%g", width, height)
	}

	var remaining []*dsl.Lexeme
	for _, token := range rest {
		switch strings.ToLower(token.Value) {
		case "landscape":
			if width < height {
				width, height = height, width
			}
		case "portrait":
			if width > height {
				width, height = height, width
			}
		default:
			remaining = append(remaining, token)
		}
	}
	return width, height, remaining, nil
}

// parseArgs 解析命令参数：若首个参数是已定义的样式名（或参数个数为奇数），视为样式，其余按 key value 成对读取。
func parseArgs(args []*dsl.Lexeme, styles map[string]Style) (string, map[string]string) {
	if len(args) == 0 {
		return "", map[string]string{}
	}
	var style string
	if args[0].Type == "Ident" {
		_, known := styles[args[0].Value]
		if styles != nil && (known || len(args)%2 == 1) {
			style = args[0].Value
			args = args[1:]
		}
	}
	return style, pairs(args)
}

func pairs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	for cursor := 0; cursor+1 < len(args); cursor += 2 {
		result[strings.ToLower(args[cursor].Value)] = args[cursor+1].Value
	}
	return result
}

// blockAttributes 收集块内除 path 以外的赋值（例如 align: right）。
func blockAttributes(block *dsl.Block) map[string]string {
	out := map[string]string{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil || strings.EqualFold(stmt.Assignment.Key, "path") {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			out[strings.ToLower(stmt.Assignment.Key)] = val
		}
	}
	return out
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) (map[string]string, error) {
	out := make(map[string]string)
	if style != "" {
		s, ok := styles[style]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义", style)
		}
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out, nil
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if name != "" {
		return FontResource{}, fmt.Errorf("字体 %s 未定义", name)
	}
	if font, ok := res.Fonts["Body"]; ok {
		return font, nil
	}
	for _, font := range res.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("没有可用的默认字体")
}

// parseFontSize 解析字号，无单位时按 pt 处理，百分比相对默认 12pt，缺省为 12pt。
func parseFontSize(value string) Length {
	if l, ok := ParseRawLengthStr(value); ok && l.Value > 0 {
		return l
	}
	return Length{Value: defaultFontSizePt, Unit: UnitPT}
}

// parseLength 解析长度为 mm，无法解析或非正数时返回 def。
func parseLength(value string, def float64) float64 {
	if l, ok := ParseRawLengthStr(value); ok && l.Value > 0 && l.Unit != UnitPercent {
		return l.ToMM()
	}
	return def
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return defaultTextColor
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	tracer().Infof("unknown color %q, using default", value)
	return defaultTextColor
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var c [3]int
	for i := range c {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		c[i] = int(v)
	}
	return Color{R: c[0], G: c[1], B: c[2]}, nil
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		return val.Expr.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
