package analysis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/net/html"
)

// DefaultTokenField 携带 CSRF token 的隐藏表单字段
const DefaultTokenField = "csrfmiddlewaretoken"

// TokenSource 提供每次分析请求附带的 CSRF token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenInvalidator 由缓存 token 的来源实现，服务端返回 403 时调用。
type TokenInvalidator interface {
	Invalidate()
}

// StaticToken 固定的 CSRF token
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// FormFieldToken 从页面的隐藏字段读取 token，首次成功后缓存，直到 Invalidate。
// Client 需要带 cookie jar，分析请求才能带上对应的 CSRF cookie。
type FormFieldToken struct {
	Client  *http.Client
	PageURL string
	Field   string

	mu     sync.Mutex
	cached string
}

func (f *FormFieldToken) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != "" {
		return f.cached, nil
	}

	token, err := f.fetch(ctx)
	if err != nil {
		return "", err
	}
	f.cached = token
	return token, nil
}

// Invalidate 丢弃缓存的 token。
func (f *FormFieldToken) Invalidate() {
	f.mu.Lock()
	f.cached = ""
	f.mu.Unlock()
}

func (f *FormFieldToken) fetch(ctx context.Context) (string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.PageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build csrf page request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch csrf page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch csrf page: unexpected status %d", resp.StatusCode)
	}

	return TokenFromDocument(resp.Body, f.Field)
}

// TokenFromDocument 返回第一个 name 等于 field 的元素的 value 属性
func TokenFromDocument(r io.Reader, field string) (string, error) {
	if field == "" {
		field = DefaultTokenField
	}

	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse csrf page: %w", err)
	}

	if value, ok := findNamedValue(doc, field); ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrTokenNotFound, field)
}

func findNamedValue(n *html.Node, field string) (string, bool) {
	if n.Type == html.ElementNode {
		var name, value string
		var hasName bool
		for _, attr := range n.Attr {
			switch attr.Key {
			case "name":
				name, hasName = attr.Val, true
			case "value":
				value = attr.Val
			}
		}
		if hasName && name == field {
			return value, true
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if value, ok := findNamedValue(child, field); ok {
			return value, true
		}
	}
	return "", false
}
