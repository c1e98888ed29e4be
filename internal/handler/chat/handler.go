package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	analysisservice "github.com/mindsight/chat-analysis/internal/service/analysis"
)

// Handler 聊天页面的HTTP处理器
type Handler struct {
	analyzer     *analysisservice.Client
	users        analysisservice.UserIDSource
	logger       logrus.FieldLogger
	secureCookie bool
	upgrader     websocket.Upgrader
}

// Options 配置聊天处理器
type Options struct {
	// Users 为空时使用匿名 cookie 作为用户标识。
	Users        analysisservice.UserIDSource
	Logger       logrus.FieldLogger
	SecureCookie bool
}

// New 创建聊天处理器
func New(analyzer *analysisservice.Client, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		analyzer:     analyzer,
		users:        opts.Users,
		logger:       logger,
		secureCookie: opts.SecureCookie,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/chat/analyze", h.handleAnalyze)
	r.Get("/ws", h.handleWebSocket)
}

// handleIndex 渲染空白聊天页面
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	token := h.ensureCookie(w, r, csrfCookieName)
	h.userID(w, r)
	h.writePage(w, http.StatusOK, pageData{CSRFToken: token})
}

// handleAnalyze 处理表单提交：调用分析接口并把结果写回页面容器
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	if !validCSRF(r, r.PostFormValue(csrfFieldName)) {
		http.Error(w, "csrf verification failed", http.StatusForbidden)
		return
	}

	token := h.ensureCookie(w, r, csrfCookieName)
	message := r.PostFormValue("message")
	if message == "" {
		h.writePage(w, http.StatusBadRequest, pageData{CSRFToken: token})
		return
	}

	page := newPageDisplay()
	resp := h.analyzer.WithDisplay(page.display).Submit(r.Context(), message, h.userID(w, r))
	if resp == nil {
		h.logger.Debug("[chat] analysis unavailable, page left unchanged")
	}

	h.writePage(w, http.StatusOK, pageData{
		CSRFToken:       token,
		Message:         message,
		Emotions:        page.emotions.HTML(),
		Alert:           page.alert.HTML(),
		Recommendations: page.recommendations.HTML(),
	})
}
