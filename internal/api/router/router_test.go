package router

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ai-go/internal/api/handler"
	"resume-ai-go/internal/apperr"
	"resume-ai-go/internal/gemini"
	"resume-ai-go/internal/processor"
	"resume-ai-go/internal/prompt"
	"resume-ai-go/internal/types"
)

const modelAnswer = `{"personal":{"name":"张三","items":[{"label":"专业","value":"计算机"}]},` +
	`"pages":[{"sections":[{"title":"教育背景","type":"education","content":[{"school":"北大","major":"计算机"}]}]}]}`

// newUpstream 模拟生成接口，固定返回 text 作为回答片段
func newUpstream(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]interface{}{
			"candidates": []interface{}{map[string]interface{}{
				"content": map[string]interface{}{"role": "model", "parts": []interface{}{
					map[string]interface{}{"text": text},
				}},
			}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write(body)
		} else {
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, upstream *httptest.Server, apiKey string, apiKeys []string) *server.Hertz {
	t.Helper()
	client := gemini.NewClient(gemini.Config{
		APIKey:     apiKey,
		BaseURL:    upstream.URL + "/",
		APIVersion: "v1beta",
		Model:      "gemini-test",
	}, gemini.WithHTTPClient(upstream.Client()))

	autofill := processor.NewAutofillProcessor(processor.WithGenerator(client))
	var polisher *processor.Polisher
	if client.HasCredential() {
		polisher = processor.NewPolisher(gemini.NewChatModel(client, prompt.GenerationParams{}))
	} else {
		polisher = processor.NewPolisher(nil)
	}

	h := server.Default(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, handler.NewAutofillHandler(autofill, polisher, client.Model(), client.HasCredential(), zerolog.Nop()), apiKeys)
	return h
}

func jsonBody(t *testing.T, v interface{}) *ut.Body {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return &ut.Body{Body: bytes.NewReader(data), Len: len(data)}
}

var jsonHeader = ut.Header{Key: "Content-Type", Value: "application/json"}

func TestHealth(t *testing.T) {
	h := newTestServer(t, newUpstream(t, http.StatusOK, "{}"), "", []string{"secret"})

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/v1/health", nil)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "gemini-test", health.Model)
	assert.False(t, health.CredentialConfigured)
}

func TestExtract_MergesIntoExisting(t *testing.T) {
	h := newTestServer(t, newUpstream(t, http.StatusOK, modelAnswer), "test-key", nil)
	existing := types.DefaultDocument()

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/extract",
		jsonBody(t, handler.AutofillRequest{Text: "姓名：张三\n学校：北大\n专业：计算机", Existing: &existing}),
		jsonHeader)
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode(), string(resp.Body()))

	var out handler.AutofillResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.Equal(t, "张三", out.Document.Personal.Name)
	assert.Equal(t, types.DefaultPhotoURL, out.Document.Personal.Photo)
	assert.Equal(t, existing.TemplateID, out.Document.TemplateID)
	require.Len(t, out.Document.Pages, 1)
	require.Len(t, out.Document.Pages[0].Sections, 1)
	assert.Equal(t, types.SectionEducation, out.Document.Pages[0].Sections[0].Type)
	assert.NotEmpty(t, out.Document.Pages[0].Sections[0].ID)
	assert.Equal(t, "direct", out.Layer)
}

func TestExtract_ErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		answer     string
		apiKey     string
		body       interface{}
		wantStatus int
		wantKind   apperr.Kind
	}{
		{"缺少密钥", http.StatusOK, modelAnswer, "", handler.AutofillRequest{Text: "张三"}, http.StatusServiceUnavailable, apperr.KindMissingCredential},
		{"空输入", http.StatusOK, modelAnswer, "k", handler.AutofillRequest{Text: "  "}, http.StatusBadRequest, apperr.KindInvalidInput},
		{"非法图片", http.StatusOK, modelAnswer, "k", handler.AutofillRequest{Image: "not-a-data-url"}, http.StatusBadRequest, apperr.KindInvalidInput},
		{"上游失败", http.StatusInternalServerError, "", "k", handler.AutofillRequest{Text: "张三"}, http.StatusBadGateway, apperr.KindNetworkFailure},
		{"无法解析", http.StatusOK, "抱歉，我无法处理这份简历。", "k", handler.AutofillRequest{Text: "张三"}, http.StatusUnprocessableEntity, apperr.KindExtractionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, newUpstream(t, tt.status, tt.answer), tt.apiKey, nil)
			w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/extract", jsonBody(t, tt.body), jsonHeader)
			resp := w.Result()
			assert.Equal(t, tt.wantStatus, resp.StatusCode())

			var out handler.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body(), &out))
			assert.Equal(t, tt.wantKind, out.Error.Kind)
			assert.NotEmpty(t, out.Error.Message)
		})
	}
}

func TestOptimize_AcceptsImage(t *testing.T) {
	h := newTestServer(t, newUpstream(t, http.StatusOK, modelAnswer), "test-key", nil)
	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/optimize",
		jsonBody(t, handler.AutofillRequest{Image: image, TargetRole: "后端开发"}), jsonHeader)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode(), string(w.Result().Body()))
}

func TestPolish_AlwaysOK(t *testing.T) {
	t.Run("成功", func(t *testing.T) {
		h := newTestServer(t, newUpstream(t, http.StatusOK, "  主导订单服务重构。 "), "test-key", nil)
		w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/polish",
			jsonBody(t, handler.PolishRequest{Text: "做过订单服务", Kind: "bullet"}), jsonHeader)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())
		var out handler.PolishResponse
		require.NoError(t, json.Unmarshal(w.Result().Body(), &out))
		assert.Equal(t, "主导订单服务重构。", out.Text)
	})
	t.Run("上游失败返回原文", func(t *testing.T) {
		h := newTestServer(t, newUpstream(t, http.StatusInternalServerError, ""), "test-key", nil)
		w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/polish",
			jsonBody(t, handler.PolishRequest{Text: "做过订单服务"}), jsonHeader)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())
		var out handler.PolishResponse
		require.NoError(t, json.Unmarshal(w.Result().Body(), &out))
		assert.Equal(t, "做过订单服务", out.Text)
	})
}

func TestKeyAuth(t *testing.T) {
	h := newTestServer(t, newUpstream(t, http.StatusOK, modelAnswer), "test-key", []string{"secret"})
	body := handler.AutofillRequest{Text: "张三"}

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/extract", jsonBody(t, body), jsonHeader)
	assert.NotEqual(t, http.StatusOK, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/extract", jsonBody(t, body), jsonHeader,
		ut.Header{Key: "Authorization", Value: "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/v1/resume/extract", jsonBody(t, body), jsonHeader,
		ut.Header{Key: "Authorization", Value: "Bearer secret"})
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}
