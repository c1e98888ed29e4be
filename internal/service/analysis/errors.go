package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrAnalysisRequestFailed 匹配一次提交过程中的所有失败
	ErrAnalysisRequestFailed = errors.New("analysis request failed")
	ErrEmptyMessage          = errors.New("message is required")
	ErrTokenNotFound         = errors.New("csrf token field not found")
)

// RequestFailedError.Op 中记录的失败阶段
const (
	OpValidate  = "validate"
	OpToken     = "csrf"
	OpEncode    = "encode"
	OpTransport = "transport"
	OpDecode    = "decode"
)

// RequestFailedError 说明一次分析请求为何没有得到响应
type RequestFailedError struct {
	Op  string
	Err error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrAnalysisRequestFailed, e.Op, e.Err)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Is 与 ErrAnalysisRequestFailed 匹配
func (e *RequestFailedError) Is(target error) bool {
	return target == ErrAnalysisRequestFailed
}

func failed(op string, err error) error {
	return &RequestFailedError{Op: op, Err: err}
}
