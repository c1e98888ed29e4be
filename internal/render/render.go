package render

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mindsight/chat-analysis/internal/model/analysis"
)

// Container 展示容器，每次写入整体替换内容
type Container interface {
	SetHTML(content template.HTML)
}

// RiskPresenter 接收风险分派的结果
type RiskPresenter interface {
	ShowEmergencyAlert(risk analysis.RiskAssessment)
	ShowSupportMessage()
}

// Path 标识触发了哪种风险提示
type Path string

const (
	PathNone      Path = ""
	PathEmergency Path = "emergency"
	PathSupport   Path = "support"
)

// Display 一次分析所用的全部渲染目标
type Display struct {
	Emotions        Container
	Risk            RiskPresenter
	Recommendations Container
}

// Apply 依次渲染情绪、风险和推荐
func (d Display) Apply(resp *analysis.Response) {
	if resp == nil {
		return
	}
	Emotions(d.Emotions, resp.Analysis)
	Risk(d.Risk, resp.RiskAssessment)
	Recommendations(d.Recommendations, resp.Recommendations)
}

type emotionBar struct {
	Name  string
	Width string
}

// Emotions 写入主导情绪，并为每个情绪得分生成一条进度条
func Emotions(c Container, a analysis.Analysis) {
	if c == nil {
		return
	}

	bars := make([]emotionBar, 0, len(a.Emotions))
	for _, item := range a.Emotions {
		bars = append(bars, emotionBar{Name: item.Name, Width: percent(item.Score)})
	}

	c.SetHTML(execute(emotionTemplate, map[string]any{
		"Dominant": a.DominantEmotion,
		"Bars":     bars,
	}))
}

// Risk 按风险类别分派，最多触发一种提示
func Risk(p RiskPresenter, risk analysis.RiskAssessment) Path {
	path := Classify(risk.RiskCategory)
	if p == nil {
		return path
	}

	switch path {
	case PathEmergency:
		p.ShowEmergencyAlert(risk)
	case PathSupport:
		p.ShowSupportMessage()
	}
	return path
}

// Classify 把风险类别映射为提示类型
func Classify(category string) Path {
	switch category {
	case analysis.RiskHigh:
		return PathEmergency
	case analysis.RiskMedium:
		return PathSupport
	default:
		return PathNone
	}
}

// Recommendations 每条推荐生成一张卡片，列表为空时不修改容器
func Recommendations(c Container, recs []analysis.Recommendation) {
	if c == nil || len(recs) == 0 {
		return
	}
	c.SetHTML(execute(recommendationTemplate, recs))
}

// Alert 渲染对应提示类型的 HTML
func Alert(path Path, risk analysis.RiskAssessment) template.HTML {
	switch path {
	case PathEmergency:
		return execute(emergencyTemplate, risk)
	case PathSupport:
		return execute(supportTemplate, nil)
	default:
		return ""
	}
}

func percent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', -1, 64)
}

func execute(tmpl *template.Template, data any) template.HTML {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logrus.WithError(err).WithField("template", tmpl.Name()).Error("[render] execute template failed")
		return ""
	}
	return template.HTML(buf.String())
}
