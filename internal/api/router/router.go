package router

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-ai-go/internal/api/handler"
	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/prompt"
)

var errInvalidKey = errors.New("invalid api key")

// RegisterRoutes 注册 API 路由；apiKeys 非空时 /api/v1 下除健康检查外都需要 Bearer 密钥
func RegisterRoutes(h *server.Hertz, autofillHandler *handler.AutofillHandler, apiKeys []string) {
	api := h.Group("/api/v1")

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, autofillHandler.Health())
	})

	resume := api.Group("/resume")
	if len(apiKeys) > 0 {
		resume.Use(keyAuth(apiKeys))
	}

	resume.POST("/extract", autofillRoute(autofillHandler, prompt.ModeExtract))
	resume.POST("/optimize", autofillRoute(autofillHandler, prompt.ModeOptimize))

	resume.POST("/polish", func(c context.Context, ctx *app.RequestContext) {
		var req handler.PolishRequest
		if err := ctx.BindJSON(&req); err != nil {
			writeError(ctx, apperr.NewInvalidInput("api.polish", err.Error()))
			return
		}
		ctx.JSON(consts.StatusOK, autofillHandler.HandlePolish(c, &req))
	})
}

func autofillRoute(h *handler.AutofillHandler, mode prompt.Mode) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		var req handler.AutofillRequest
		if err := ctx.BindJSON(&req); err != nil {
			writeError(ctx, apperr.NewInvalidInput("api.autofill", err.Error()))
			return
		}
		resp, err := h.HandleAutofill(c, mode, &req)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	}
}

func writeError(ctx *app.RequestContext, err error) {
	report := apperr.Classify(err)
	ctx.JSON(apperr.HTTPStatus(report.Kind), handler.ErrorResponse{Error: report})
}

func keyAuth(apiKeys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, k := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, errInvalidKey
		}),
		keyauth.WithErrorHandler(func(_ context.Context, ctx *app.RequestContext, err error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}),
	)
}
