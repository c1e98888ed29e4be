package analysis

// Request 提交给分析接口的请求体
type Request struct {
	Message string `json:"message"`
	UserID  any    `json:"user_id"`
}
