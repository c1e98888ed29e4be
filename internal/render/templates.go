package render

import "html/template"

var emotionTemplate = template.Must(template.New("emotions").Parse(`
<div class="emotion-indicator">
    <span class="dominant-emotion">{{.Dominant}}</span>
    <div class="emotion-bar">
        {{- range .Bars}}
        <div class="emotion-item" style="width: {{.Width}}%">{{.Name}}</div>
        {{- end}}
    </div>
</div>
`))

var recommendationTemplate = template.Must(template.New("recommendations").Parse(`
{{- range .}}
<div class="recommendation-card">
    <h4>{{.Icon}} {{.Title}}</h4>
    <p>{{.Description}}</p>
    <small>{{.Duration}} minutes • {{.Difficulty}}</small>
</div>
{{- end}}
`))

var emergencyTemplate = template.Must(template.New("emergency").Parse(`
<div class="alert alert-emergency" role="alert">
    <strong>You don't have to go through this alone.</strong>
    <p>If you are in danger or thinking about harming yourself, please contact a crisis helpline or emergency services right now.</p>
    {{- if .RiskLevel}}
    <small>risk level {{.RiskLevel}}/10</small>
    {{- end}}
</div>
`))

var supportTemplate = template.Must(template.New("support").Parse(`
<div class="alert alert-support" role="status">
    <p>It sounds like things are hard right now. Talking to someone you trust or a counselor can help.</p>
</div>
`))
