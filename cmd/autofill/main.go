package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	appcore "resume-ai-go/internal/app"
	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/config"
	"resume-ai-go/internal/logger"
	"resume-ai-go/internal/processor"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/types"
)

func main() {
	var (
		configPath   string
		textFile     string
		imageFile    string
		mode         string
		targetRole   string
		existingFile string
		polishKind   string
		timeout      time.Duration
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVarP(&textFile, "text-file", "t", "", "简历文本文件，- 表示标准输入")
	pflag.StringVarP(&imageFile, "image", "i", "", "简历截图 (png/jpeg/webp)")
	pflag.StringVarP(&mode, "mode", "m", string(prompt.ModeExtract), "extract、optimize 或 polish")
	pflag.StringVarP(&targetRole, "target-role", "r", "", "optimize 模式的目标岗位")
	pflag.StringVarP(&existingFile, "existing", "e", "", "编辑器当前文档的 JSON 文件，默认使用示例简历")
	pflag.StringVar(&polishKind, "kind", string(prompt.PolishBullet), "polish 模式的文本类型: bullet、summary、education")
	pflag.DurationVar(&timeout, "timeout", 3*time.Minute, "整体超时")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(2)
	}
	logger.Init(logger.Config{Level: cfg.Logger.Level, Format: "pretty", TimeFormat: cfg.Logger.TimeFormat})

	a := appcore.New(cfg, logger.Logger)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	text, err := readText(textFile)
	if err != nil {
		fail(apperr.NewInvalidInput("cli.text", err.Error()))
	}

	if mode == "polish" {
		fmt.Println(a.Polisher.Polish(ctx, text, prompt.PolishKind(polishKind)))
		return
	}

	image, err := readImage(imageFile)
	if err != nil {
		fail(apperr.NewInvalidInput("cli.image", err.Error()))
	}
	existing, err := readExisting(existingFile)
	if err != nil {
		fail(apperr.NewInvalidInput("cli.existing", err.Error()))
	}

	res, err := a.Autofill.Run(ctx, processor.Request{
		Mode:       prompt.Mode(mode),
		Text:       text,
		Image:      image,
		TargetRole: targetRole,
		Existing:   existing,
	})
	if err != nil {
		fail(err)
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	out.SetEscapeHTML(false)
	if err := out.Encode(res.Document); err != nil {
		fail(err)
	}
	logger.Info().Str("layer", string(res.Layer)).Bool("partial", res.Partial).Bool("cached", res.Cached).Msg("完成")
}

// fail 把错误报告写到标准错误并以非零状态退出
func fail(err error) {
	report := apperr.Classify(err)
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]apperr.Report{"error": report})
	os.Exit(1)
}

func readText(path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func readImage(path string) (*types.Image, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &types.Image{MIMEType: mimeType, Data: data}, nil
}

func readExisting(path string) (*types.ResumeDocument, error) {
	if path == "" {
		doc := types.DefaultDocument()
		return &doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc types.ResumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return &doc, nil
}
