package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"

	"resume-ai-go/internal/api/handler"
	"resume-ai-go/internal/api/router"
	appcore "resume-ai-go/internal/app"
	"resume-ai-go/internal/config"
	"resume-ai-go/internal/logger"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(logger.Logger))
	glog.SetLevel(glog.LevelInfo)

	a := appcore.New(cfg, logger.Logger)
	if !a.Client.HasCredential() {
		logger.Warn().Msg("未配置 API Key，提取与优化接口将返回 MissingCredential")
	}
	autofillHandler := handler.NewAutofillHandler(
		a.Autofill, a.Polisher, a.Client.Model(), a.Client.HasCredential(),
		logger.Component("api"),
	)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBody),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		logger.Info().
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
	router.RegisterRoutes(h, autofillHandler, cfg.Server.APIKeys)

	logger.Info().Str("address", cfg.Server.Address).Str("model", a.Client.Model()).Msg("HTTP 服务器启动中")
	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	if err := a.Close(); err != nil {
		logger.Warn().Err(err).Msg("关闭 Redis 连接失败")
	}
	logger.Info().Msg("优雅退出完成")
}
