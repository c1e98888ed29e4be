package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/mindsight/chat-analysis/internal/config"
	"github.com/mindsight/chat-analysis/pkg/utils"
)

// NewFromConfig 根据配置创建 Client 与用户标识来源。
// 配置了固定 CSRF token 时不再抓取页面。
func NewFromConfig(cfg config.AnalysisConfig, logger logrus.FieldLogger) (*Client, UserIDSource, error) {
	httpClient := utils.NewHTTPClient(cfg.Timeout)

	var tokens TokenSource
	if cfg.CSRFToken != "" {
		tokens = StaticToken(cfg.CSRFToken)
	} else {
		tokens = &FormFieldToken{
			Client:  httpClient,
			PageURL: cfg.TokenPageURL(),
			Field:   cfg.CSRFField,
		}
	}

	client, err := NewClient(Options{
		BaseURL:    cfg.BaseURL,
		Path:       cfg.Path,
		HTTPClient: httpClient,
		Tokens:     tokens,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}

	var users UserIDSource
	if cfg.UserID != "" {
		users = StaticUserID{ID: cfg.UserID}
	}
	return client, users, nil
}
