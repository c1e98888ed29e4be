package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotObject 响应体不是 JSON 对象（例如 null、数组或标量）
	ErrNotObject = errors.New("analysis response is not a json object")
	// ErrIncomplete ml_available 为 true 但缺少渲染所需的字段
	ErrIncomplete = errors.New("analysis response is missing rendered fields")
)

// 分析服务返回的风险等级
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Response 分析接口返回的 JSON 结构
type Response struct {
	MLAvailable     bool             `json:"ml_available"`
	Analysis        Analysis         `json:"analysis"`
	RiskAssessment  RiskAssessment   `json:"risk_assessment"`
	Recommendations []Recommendation `json:"recommendations"`
	// 服务端拒绝请求时返回的错误信息
	Error string `json:"error,omitempty"`
}

// Analysis 单条消息的情绪得分
type Analysis struct {
	Emotions        Emotions `json:"emotions"`
	DominantEmotion string   `json:"dominant_emotion"`
	SentimentScore  float64  `json:"sentiment_score,omitempty"`
}

// RiskAssessment 消息的风险分级
type RiskAssessment struct {
	RiskCategory string `json:"risk_category"`
	RiskLevel    int    `json:"risk_level,omitempty"`
}

// Recommendation 推荐的缓解活动
type Recommendation struct {
	ID          int    `json:"id,omitempty"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Difficulty  string `json:"difficulty"`
	Type        string `json:"type,omitempty"`
	Emergency   bool   `json:"emergency,omitempty"`
}

// EmotionScore 情绪映射中的一项
type EmotionScore struct {
	Name  string
	Score float64
}

// Emotions 按服务端返回的键顺序保存情绪映射
type Emotions []EmotionScore

// Score 查找指定情绪的得分
func (e Emotions) Score(name string) (float64, bool) {
	for _, item := range e {
		if item.Name == name {
			return item.Score, true
		}
	}
	return 0, false
}

// UnmarshalJSON 解析 JSON 对象并保留键顺序
func (e *Emotions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("emotions: expected object, got %v", tok)
	}

	out := make(Emotions, 0, 8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("emotions: unexpected key %v", keyTok)
		}

		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("emotions: score for %q: %w", name, err)
		}
		out = append(out, EmotionScore{Name: name, Score: score})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*e = out
	return nil
}

func (e Emotions) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(item.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// renderedFields 仅用于判断渲染所需字段是否真实存在。
type renderedFields struct {
	Analysis *struct {
		Emotions json.RawMessage `json:"emotions"`
	} `json:"analysis"`
	RiskAssessment json.RawMessage `json:"risk_assessment"`
}

// DecodeResponse 解析完整的响应体。
// 响应体必须是单个 JSON 对象，末尾不能有多余内容；ml_available 为 true 时
// analysis.emotions 与 risk_assessment 都必须是对象，否则不渲染任何内容。
func DecodeResponse(data []byte) (*Response, error) {
	if !isObject(data) {
		return nil, ErrNotObject
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if !resp.MLAvailable {
		return &resp, nil
	}

	var fields renderedFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	switch {
	case fields.Analysis == nil:
		return nil, fmt.Errorf("%w: analysis", ErrIncomplete)
	case !isObject(fields.Analysis.Emotions):
		return nil, fmt.Errorf("%w: analysis.emotions", ErrIncomplete)
	case !isObject(fields.RiskAssessment):
		return nil, fmt.Errorf("%w: risk_assessment", ErrIncomplete)
	}
	return &resp, nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
