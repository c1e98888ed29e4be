package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mindsight/chat-analysis/internal/config"
	"github.com/mindsight/chat-analysis/internal/render"
	analysisservice "github.com/mindsight/chat-analysis/internal/service/analysis"
	"github.com/mindsight/chat-analysis/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("配置加载失败: %v", err)
	}

	message := flag.String("message", "", "要分析的消息内容")
	user := flag.String("user", "", "用户标识，默认使用 ANALYSIS_USER_ID 或随机匿名 ID")
	timeout := flag.Duration("timeout", 0, "整体超时时间，0 表示不设超时")
	flag.Parse()

	if strings.TrimSpace(*message) == "" {
		flag.Usage()
		os.Exit(2)
	}

	// 诊断日志写到 stderr，stdout 只输出渲染结果。
	log := logger.NewWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	client, users, err := analysisservice.NewFromConfig(cfg.Analysis, log)
	if err != nil {
		log.Fatalf("初始化分析客户端失败: %v", err)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var userID any
	switch {
	case *user != "":
		userID = *user
	case users != nil:
		userID = users.UserID(ctx)
	default:
		userID = analysisservice.NewAnonymousUserID().UserID(ctx)
	}

	os.Exit(run(ctx, client, *message, userID, os.Stdout))
}

func run(ctx context.Context, client *analysisservice.Client, message string, userID any, out io.Writer) int {
	emotions := render.NewBuffer("")
	recommendations := render.NewBuffer("")
	alerts := render.NewAlertBox(nil)

	start := time.Now()
	resp := client.WithDisplay(render.Display{
		Emotions:        emotions,
		Risk:            alerts,
		Recommendations: recommendations,
	}).Submit(ctx, message, userID)
	if resp == nil {
		fmt.Fprintln(out, "analysis failed")
		return 1
	}

	fmt.Fprintf(out, "ml_available: %t (%s)\n", resp.MLAvailable, time.Since(start).Round(time.Millisecond))
	if !resp.MLAvailable {
		if resp.Error != "" {
			fmt.Fprintf(out, "server error: %s\n", resp.Error)
		}
		return 0
	}

	fmt.Fprintf(out, "dominant emotion: %s\n", resp.Analysis.DominantEmotion)
	fmt.Fprintf(out, "risk: %s -> %s\n", resp.RiskAssessment.RiskCategory, describePath(alerts.Path()))
	fmt.Fprintf(out, "\n[%s]\n%s\n", "ml-results", strings.TrimSpace(string(emotions.HTML())))
	if recommendations.Writes() > 0 {
		fmt.Fprintf(out, "\n[%s]\n%s\n", "recommendations-panel", strings.TrimSpace(string(recommendations.HTML())))
	}
	return 0
}

func describePath(path render.Path) string {
	if path == render.PathNone {
		return "no alert"
	}
	return string(path)
}
