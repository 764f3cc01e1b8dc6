package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"

	"github.com/ByLCY/pathtext/dsl"
	"github.com/ByLCY/pathtext/renderer"
	canvasrenderer "github.com/ByLCY/pathtext/renderer/canvas"
	"github.com/ByLCY/pathtext/scene"
	"github.com/ByLCY/pathtext/textpath"
)

var traceKeys = []string{"pathtext.scene", "pathtext.canvas"}

func main() {
	input := flag.String("in", "examples/labels.ptx", "DSL 文件路径")
	output := flag.String("out", "output/labels.pdf", "输出文件路径")
	format := flag.String("format", "", "输出格式 pdf|svg|png，默认按 -out 的扩展名推断")
	dpmm := flag.Float64("dpmm", 8, "png 输出的每毫米像素数")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	debugRawUnits := flag.Bool("debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	graphemes := flag.Bool("graphemes", false, "按字素簇而不是码点逐字排布")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if err := setupTracing(*verbose); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	name := *format
	if name == "" {
		name = formatFromExt(*output)
	}
	outFormat, err := canvasrenderer.ParseFormat(name)
	if err != nil {
		log.Fatalf("%v", err)
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: filepath.Dir(*input),
		Format:  outFormat,
		DPMM:    *dpmm,
	})
	opts := scene.BuildOptions{
		Measurer: r,
		Debug:    scene.DebugOptions{RawUnits: *debugRawUnits},
	}
	if *graphemes {
		opts.Segmentation = textpath.Graphemes
	}
	if err := run(*input, *output, *debug, inputData, opts, r); err != nil {
		log.Fatalf("生成 %s 失败: %v", outFormat, err)
	}
	fmt.Printf("已生成 %s：%s\n", outFormat, *output)
}

func setupTracing(verbose bool) error {
	level := "Error"
	if verbose {
		level = "Debug"
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

func formatFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".svg":
		return "svg"
	case ".png":
		return "png"
	default:
		return "pdf"
	}
}

// run 串联解析、布局与渲染。
func run(inputPath, outputPath, debugPath string, data any, opts scene.BuildOptions, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	result, err := scene.Build(doc, data, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *scene.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := scene.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
