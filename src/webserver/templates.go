package webserver

import (
	"html/template"

	"github.com/gin-gonic/gin"
)

const (
	pageTemplate  = "page"
	errorTemplate = "error"
)

const templatesSource = `
{{define "page"}}<html>
  <head>
    <title>Cast Lottery Checker</title>
    <style>
      body { font-family: Arial; }
      table { border-collapse: collapse; width: 100%; }
      th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
      th { background-color: #f2f2f2; }
    </style>
  </head>
  <body>
    <h1>Lottery Players List (Real-time Update)</h1>
    <p>Cutoff: {{.Cutoff}}</p>
    <p>Total replies fetched: {{.TotalReplies}}</p>
    <p>Number of comments skipped due to duplicates: {{.SkippedDuplicates}}</p>
    <p>Rejected replies: {{.Rejected}}</p>
    <p>Total valid players: {{.TotalPlayers}}</p>
    {{if .IsFull}}<p style="color: green;">Reached 100 participants!</p>{{end}}
    <table>
      <tr><th>Number</th><th>Username</th><th>FID</th><th>Timestamp</th></tr>
      {{range .Rows}}<tr><td>{{.Number}}</td>{{if .Taken}}<td>@{{.Username}}</td><td>{{.FID}}</td><td>{{.Timestamp}}</td>{{else}}<td>Not selected yet</td><td></td><td></td>{{end}}</tr>
      {{end}}
    </table>
  </body>
</html>{{end}}
{{define "error"}}<html><body><h1>Error: {{.Error}}</h1></body></html>{{end}}
`

func setTemplates(r *gin.Engine) error {
	tmpl, err := template.New("castlotto").Parse(templatesSource)
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}
