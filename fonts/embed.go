package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是未指定或加载失败时使用的内置字体。
const Default = "Go-Regular"

// 内置字体表：名称 → TTF 字节。
var bundled = map[string][]byte{
	"Go-Regular":          goregular.TTF,
	"Go-Bold":             gobold.TTF,
	"Go-Italic":           goitalic.TTF,
	"Go-Mono":             gomono.TTF,
	"LatinModern-Regular": lmroman10regular.TTF,
	"LatinModern-Bold":    lmroman10bold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Regular" 或直接 "Go-Regular"（不区分大小写）。
func Load(name string) ([]byte, error) {
	name = strings.TrimSpace(strings.TrimPrefix(name, "embed:"))
	if data, ok := bundled[name]; ok {
		return data, nil
	}
	for key, data := range bundled {
		if strings.EqualFold(key, name) {
			return data, nil
		}
	}
	return nil, fmt.Errorf("内置字体 %s 不存在（可用：%s）", name, strings.Join(Names(), ", "))
}

// Names lists the bundled font names in sorted order.
func Names() []string {
	names := make([]string, 0, len(bundled))
	for name := range bundled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find 在系统字体目录中查找字体文件，file 可写为 "system:DejaVuSans.ttf"。
func Find(file string) (string, error) {
	file = strings.TrimSpace(strings.TrimPrefix(file, "system:"))
	if file == "" {
		return "", fmt.Errorf("系统字体名称为空")
	}
	path, err := findfont.Find(file)
	if err != nil {
		return "", fmt.Errorf("查找系统字体 %s 失败: %w", file, err)
	}
	return path, nil
}
