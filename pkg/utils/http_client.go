package utils

import (
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// NewHTTPClient 创建带 Cookie 存储的 HTTP 客户端，timeout 为 0 表示不设超时。
func NewHTTPClient(timeout time.Duration) *http.Client {
	// cookiejar.New 只会在 PublicSuffixList 出错时返回 error，这里传 nil 不会失败。
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout: timeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
