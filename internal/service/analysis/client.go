package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	model "github.com/mindsight/chat-analysis/internal/model/analysis"
	"github.com/mindsight/chat-analysis/internal/render"
)

// DefaultPath 分析接口相对于服务根地址的路径
const DefaultPath = "/chat/api/analyze/"

// Options Client 的构造参数
type Options struct {
	BaseURL    string
	Path       string
	HTTPClient *http.Client
	Tokens     TokenSource
	Display    render.Display
	Logger     logrus.FieldLogger
}

// Client 把聊天消息提交给分析接口，并把结果渲染到展示容器。
type Client struct {
	httpClient *http.Client
	endpoint   string
	tokens     TokenSource
	display    render.Display
	logger     logrus.FieldLogger
}

// NewClient 校验参数并创建 Client
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid analysis base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid analysis base url %q: scheme and host are required", opts.BaseURL)
	}

	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis path %q: %w", path, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   base.ResolveReference(ref).String(),
		tokens:     opts.Tokens,
		display:    opts.Display,
		logger:     logger,
	}, nil
}

// Endpoint 返回分析接口的完整地址
func (c *Client) Endpoint() string { return c.endpoint }

// WithDisplay 返回渲染到 d 的客户端副本
func (c *Client) WithDisplay(d render.Display) *Client {
	clone := *c
	clone.display = d
	return &clone
}

// Submit 提交消息进行分析。失败时记录日志并返回 nil。
func (c *Client) Submit(ctx context.Context, message string, userID any) *model.Response {
	resp, err := c.Analyze(ctx, message, userID)
	if err != nil {
		entry := c.logger.WithError(err)
		var rf *RequestFailedError
		if errors.As(err, &rf) {
			entry = entry.WithField("op", rf.Op)
		}
		entry.Error("ML analysis failed")
		return nil
	}
	return resp
}

// Analyze 完成一次请求，成功时返回解析后的响应，失败时返回 *RequestFailedError。
// ml_available 为 true 时在返回前完成渲染。
func (c *Client) Analyze(ctx context.Context, message string, userID any) (*model.Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, failed(OpValidate, ErrEmptyMessage)
	}

	var token string
	if c.tokens != nil {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, failed(OpToken, err)
		}
		token = t
	}

	body, err := json.Marshal(model.Request{Message: message, UserID: userID})
	if err != nil {
		return nil, failed(OpEncode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, failed(OpEncode, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failed(OpTransport, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusForbidden {
		// token 可能已过期，下一次请求重新获取。
		if inv, ok := c.tokens.(TokenInvalidator); ok {
			inv.Invalidate()
		}
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, failed(OpTransport, err)
	}

	result, err := model.DecodeResponse(data)
	if err != nil {
		return nil, failed(OpDecode, fmt.Errorf("status %d: %w", httpResp.StatusCode, err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status":       httpResp.StatusCode,
			"server_error": result.Error,
		}).Warn("analysis endpoint returned non-success status")
	}

	if result.MLAvailable {
		c.display.Apply(result)
	}

	return result, nil
}
