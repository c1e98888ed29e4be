package chat

import (
	"html/template"
	"net/http"

	"github.com/mindsight/chat-analysis/internal/render"
)

// Container ids shared by the page and the websocket frames.
const (
	EmotionsTarget        = "ml-results"
	RecommendationsTarget = "recommendations-panel"
	AlertTarget           = "risk-alert"
)

type pageData struct {
	CSRFToken       string
	Message         string
	Emotions        template.HTML
	Alert           template.HTML
	Recommendations template.HTML
}

// pageDisplay 为一次页面渲染准备独立的容器。
type pageDisplay struct {
	emotions        *render.Buffer
	alert           *render.Buffer
	recommendations *render.Buffer
	display         render.Display
}

func newPageDisplay() *pageDisplay {
	p := &pageDisplay{
		emotions:        render.NewBuffer(""),
		alert:           render.NewBuffer(""),
		recommendations: render.NewBuffer(""),
	}
	p.display = render.Display{
		Emotions:        p.emotions,
		Risk:            render.NewAlertBox(p.alert),
		Recommendations: p.recommendations,
	}
	return p
}

func (h *Handler) writePage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := chatPage.Execute(w, data); err != nil {
		h.logger.WithError(err).Error("[chat] render page failed")
	}
}

var chatPage = template.Must(template.New("chat").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>MindSight</title>
</head>
<body>
<main>
    <form id="chat-form" method="post" action="/chat/analyze">
        <input type="hidden" name="csrfmiddlewaretoken" value="{{.CSRFToken}}">
        <textarea name="message" rows="3" required>{{.Message}}</textarea>
        <button type="submit">Send</button>
    </form>
    <section id="risk-alert">{{.Alert}}</section>
    <section id="ml-results">{{.Emotions}}</section>
    <section id="recommendations-panel">{{.Recommendations}}</section>
</main>
<script>
(function () {
    var form = document.getElementById("chat-form");
    if (!window.WebSocket) { return; }
    var token = form.elements["csrfmiddlewaretoken"].value;
    var scheme = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(scheme + location.host + "/ws?token=" + encodeURIComponent(token));
    ws.onmessage = function (event) {
        var msg = JSON.parse(event.data);
        if (msg.type === "render" && msg.data) {
            var el = document.getElementById(msg.data.target);
            if (el) { el.innerHTML = msg.data.html; }
        }
    };
    form.addEventListener("submit", function (event) {
        if (ws.readyState !== WebSocket.OPEN) { return; }
        event.preventDefault();
        ws.send(JSON.stringify({type: "analyze", data: {message: form.elements["message"].value}}));
    });
})();
</script>
</body>
</html>
`))
