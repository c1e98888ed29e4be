package analysis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindsight/chat-analysis/internal/render"
	"github.com/mindsight/chat-analysis/pkg/utils"
)

func TestTokenFromDocument(t *testing.T) {
	doc := `<!doctype html><html><body>
		<form method="post">
			<input type="hidden" name="csrfmiddlewaretoken" value="abc123">
			<textarea name="message"></textarea>
		</form></body></html>`

	token, err := TokenFromDocument(strings.NewReader(doc), "")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestTokenFromDocumentCustomField(t *testing.T) {
	doc := `<meta name="csrf-token" value="from-meta"><input name="csrfmiddlewaretoken" value="ignored">`

	token, err := TokenFromDocument(strings.NewReader(doc), "csrf-token")
	require.NoError(t, err)
	assert.Equal(t, "from-meta", token)
}

func TestTokenFromDocumentMissingField(t *testing.T) {
	_, err := TokenFromDocument(strings.NewReader(`<form><input name="other" value="x"></form>`), DefaultTokenField)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("fixed").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
}

func TestFormFieldTokenReplaysCookie(t *testing.T) {
	const secret = "s3cr3t"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/chat/":
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: secret, Path: "/"})
			fmt.Fprintf(w, `<form><input type="hidden" name="csrfmiddlewaretoken" value="%s"></form>`, secret)
		case r.Method == http.MethodPost && r.URL.Path == DefaultPath:
			cookie, err := r.Cookie("csrftoken")
			if err != nil || cookie.Value != r.Header.Get("X-CSRFToken") {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, `{"error": "CSRF verification failed"}`)
				return
			}
			_, _ = io.WriteString(w, breatheReply)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	httpClient := utils.NewHTTPClient(5 * time.Second)
	recs := render.NewBuffer("")

	c, err := NewClient(Options{
		BaseURL:    srv.URL,
		HTTPClient: httpClient,
		Tokens:     &FormFieldToken{Client: httpClient, PageURL: srv.URL + "/chat/", Field: DefaultTokenField},
		Display:    render.Display{Recommendations: recs},
	})
	require.NoError(t, err)

	resp, err := c.Analyze(context.Background(), "hello", "u-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.True(t, resp.MLAvailable)
	assert.Contains(t, string(recs.HTML()), "Breathe")
}

func TestFormFieldTokenCachesUntilForbidden(t *testing.T) {
	var pageHits, postHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			n := atomic.AddInt32(&pageHits, 1)
			fmt.Fprintf(w, `<input type="hidden" name="csrfmiddlewaretoken" value="tok-%d">`, n)
		case http.MethodPost:
			// 第二次提交模拟 token 过期。
			if atomic.AddInt32(&postHits, 1) == 2 {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, `{"error": "CSRF verification failed"}`)
				return
			}
			_, _ = io.WriteString(w, breatheReply)
		}
	}))
	defer srv.Close()

	tokens := &FormFieldToken{PageURL: srv.URL + "/chat/"}
	c, err := NewClient(Options{BaseURL: srv.URL, Tokens: tokens})
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "first", nil)
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "second", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pageHits))

	_, err = c.Analyze(context.Background(), "third", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&pageHits))

	token, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestFormFieldTokenDoesNotCacheFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `<input name="csrfmiddlewaretoken" value="late">`)
	}))
	defer srv.Close()

	tokens := &FormFieldToken{PageURL: srv.URL}
	_, err := tokens.Token(context.Background())
	require.Error(t, err)

	token, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", token)
}

func TestFormFieldTokenBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := (&FormFieldToken{PageURL: srv.URL}).Token(context.Background())
	assert.Error(t, err)
}

func TestAnonymousUserIDIsStable(t *testing.T) {
	src := NewAnonymousUserID()
	first := src.UserID(context.Background())
	assert.NotEmpty(t, first)
	assert.Equal(t, first, src.UserID(context.Background()))
	assert.NotEqual(t, first, NewAnonymousUserID().UserID(context.Background()))

	assert.Equal(t, 7, StaticUserID{ID: 7}.UserID(context.Background()))
}
