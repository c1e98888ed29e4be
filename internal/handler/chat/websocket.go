package chat

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mindsight/chat-analysis/internal/render"
)

const writeTimeout = 10 * time.Second

var (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AnalyzeMessage 客户端提交的待分析消息
type AnalyzeMessage struct {
	Message string `json:"message"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// RenderFrame 替换页面上某个容器的内容
type RenderFrame struct {
	Target string `json:"target"`
	HTML   string `json:"html"`
}

// AlertFrame 告知客户端触发的风险提示类型
type AlertFrame struct {
	Path render.Path `json:"path"`
}

// DoneFrame 一次分析结束
type DoneFrame struct {
	MLAvailable bool `json:"mlAvailable"`
}

// wsConn 串行化对同一连接的写操作。
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msgType string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(outgoingMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// wsContainer 把容器写入转成 render 帧，对应浏览器中的 innerHTML 赋值。
type wsContainer struct {
	conn   *wsConn
	target string
	h      *Handler
}

func (c *wsContainer) SetHTML(content template.HTML) {
	if err := c.conn.send("render", RenderFrame{Target: c.target, HTML: string(content)}); err != nil {
		c.h.logger.WithError(err).WithField("target", c.target).Warn("[websocket] write render frame failed")
	}
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !validCSRF(r, r.URL.Query().Get("token")) {
		http.Error(w, "csrf verification failed", http.StatusForbidden)
		return
	}

	userID := h.userID(w, r)

	// 升级时带上刚写入的 Set-Cookie。
	conn, err := h.upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		h.logger.WithError(err).Warn("[websocket] upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ws := &wsConn{conn: conn}

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, ws)

	display := render.Display{
		Emotions:        &wsContainer{conn: ws, target: EmotionsTarget, h: h},
		Risk:            render.NewAlertBox(&wsContainer{conn: ws, target: AlertTarget, h: h}),
		Recommendations: &wsContainer{conn: ws, target: RecommendationsTarget, h: h},
	}
	analyzer := h.analyzer.WithDisplay(display)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Warn("[websocket] read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.Type != "analyze" {
			h.sendError(ws, "unsupported message type: "+msg.Type)
			continue
		}

		var payload AnalyzeMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil || strings.TrimSpace(payload.Message) == "" {
			h.sendError(ws, "message is required")
			continue
		}

		// 逐条处理：同一连接上的渲染不会交错。
		resp := analyzer.Submit(ctx, payload.Message, userID)
		// 分析期间没有读取，pong 不会刷新截止时间。
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if resp == nil {
			_ = ws.send("failed", nil)
			continue
		}

		if resp.MLAvailable {
			if path := render.Classify(resp.RiskAssessment.RiskCategory); path != render.PathNone {
				_ = ws.send("alert", AlertFrame{Path: path})
			}
		}
		if err := ws.send("done", DoneFrame{MLAvailable: resp.MLAvailable}); err != nil {
			h.logger.WithError(err).Warn("[websocket] write done frame failed")
			return
		}
	}
}

func (h *Handler) sendError(ws *wsConn, message string) {
	if err := ws.send("error", map[string]string{"message": message}); err != nil {
		h.logger.WithError(err).Warn("[websocket] write error failed")
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, ws *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}
