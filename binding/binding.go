package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		if val, ok := Lookup(data, groups[1]); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Lookup 解析 a.b[0].c 形式的路径。前缀 "data." 可省略。
func Lookup(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	if path == "data" {
		return data, data != nil
	}
	path = strings.TrimPrefix(path, "data.")
	if strings.HasPrefix(path, "data[") {
		path = strings.TrimPrefix(path, "data")
	}

	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			if current, ok = descendArray(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// Points 将 data 中的坐标列表解析为 [x, y] 对。
// 支持 [[x, y], ...] 与 [{"x": .., "y": ..}, ...] 两种写法。
func Points(data any, path string) ([][2]float64, error) {
	val, ok := Lookup(data, path)
	if !ok {
		return nil, fmt.Errorf("数据路径 %s 不存在", path)
	}
	list, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("数据路径 %s 不是数组（%T）", path, val)
	}
	out := make([][2]float64, 0, len(list))
	for i, item := range list {
		pt, err := toPoint(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		out = append(out, pt)
	}
	return out, nil
}

func toPoint(item any) ([2]float64, error) {
	switch v := item.(type) {
	case []interface{}:
		if len(v) != 2 {
			return [2]float64{}, fmt.Errorf("坐标需要 2 个分量，实际 %d 个", len(v))
		}
		x, okX := toFloat(v[0])
		y, okY := toFloat(v[1])
		if !okX || !okY {
			return [2]float64{}, fmt.Errorf("坐标分量不是数字：%v", v)
		}
		return [2]float64{x, y}, nil
	case map[string]interface{}:
		x, okX := toFloat(v["x"])
		y, okY := toFloat(v["y"])
		if !okX || !okY {
			return [2]float64{}, fmt.Errorf("坐标对象缺少数字 x/y：%v", v)
		}
		return [2]float64{x, y}, nil
	default:
		return [2]float64{}, fmt.Errorf("无法识别的坐标：%v", item)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	c, ok := current.(map[string]interface{})
	if !ok {
		return nil, false
	}
	val, ok := c[key]
	return val, ok
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]interface{})
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
