package chat

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

const (
	csrfCookieName = "ms_csrf"
	userCookieName = "ms_uid"

	// csrfFieldName 与页面隐藏字段保持一致。
	csrfFieldName = "csrfmiddlewaretoken"
)

// ensureCookie 返回已有 cookie 的值，不存在时生成新的 uuid 并写回响应。
func (h *Handler) ensureCookie(w http.ResponseWriter, r *http.Request, name string) string {
	if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	value := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return value
}

// validCSRF 校验双重提交的 token：表单或查询参数必须与 cookie 一致。
func validCSRF(r *http.Request, submitted string) bool {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) == 1
}

// userID 优先使用配置的用户来源，否则退回匿名 cookie。
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) any {
	if h.users != nil {
		return h.users.UserID(r.Context())
	}
	return h.ensureCookie(w, r, userCookieName)
}
