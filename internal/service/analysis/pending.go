package analysis

import (
	"context"

	model "github.com/mindsight/chat-analysis/internal/model/analysis"
)

// Pending 进行中的一次分析，只会完成一次。
type Pending struct {
	done chan struct{}
	resp *model.Response
	err  error
}

// Start 在后台执行 Analyze 并立即返回
func (c *Client) Start(ctx context.Context, message string, userID any) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.resp, p.err = c.Analyze(ctx, message, userID)
	}()
	return p
}

// Done 在请求成功或失败后关闭
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result 阻塞直到请求结束
func (p *Pending) Result() (*model.Response, error) {
	<-p.done
	return p.resp, p.err
}

// Wait 与 Result 相同，但 ctx 先结束时放弃等待；请求本身不会被取消。
func (p *Pending) Wait(ctx context.Context) (*model.Response, error) {
	select {
	case <-p.done:
		return p.resp, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
