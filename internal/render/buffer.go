package render

import (
	"html/template"
	"sync"

	"github.com/mindsight/chat-analysis/internal/model/analysis"
)

// Buffer 内存中的 Container，以最后一次写入为准
type Buffer struct {
	mu      sync.RWMutex
	content template.HTML
	writes  int
}

// NewBuffer 创建带初始内容的 Buffer
func NewBuffer(initial template.HTML) *Buffer {
	return &Buffer{content: initial}
}

// SetHTML 替换当前内容
func (b *Buffer) SetHTML(content template.HTML) {
	b.mu.Lock()
	b.content = content
	b.writes++
	b.mu.Unlock()
}

// HTML 返回当前内容
func (b *Buffer) HTML() template.HTML {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// Writes 返回内容被替换的次数
func (b *Buffer) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// AlertBox 记录风险提示，并渲染到 Container
type AlertBox struct {
	mu     sync.RWMutex
	target Container
	path   Path
	calls  int
}

// NewAlertBox 创建 AlertBox，target 可以为 nil
func NewAlertBox(target Container) *AlertBox {
	return &AlertBox{target: target}
}

func (a *AlertBox) ShowEmergencyAlert(risk analysis.RiskAssessment) {
	a.record(PathEmergency, risk)
}

func (a *AlertBox) ShowSupportMessage() {
	a.record(PathSupport, analysis.RiskAssessment{})
}

func (a *AlertBox) record(path Path, risk analysis.RiskAssessment) {
	a.mu.Lock()
	a.path = path
	a.calls++
	target := a.target
	a.mu.Unlock()

	if target != nil {
		target.SetHTML(Alert(path, risk))
	}
}

// Path 返回最后一次提示类型，未提示时为 PathNone
func (a *AlertBox) Path() Path {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.path
}

// Calls 返回提示次数
func (a *AlertBox) Calls() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.calls
}
