package server

import (
	"html/template"
	"net/http"

	"github.com/tablewarden/tablewarden/pkg/logging"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>tablewarden</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f4f4f4; }
.running { color: #b55; }
button { padding: 0.3rem 0.8rem; }
</style>
</head>
<body>
<h1>tablewarden</h1>
{{if .Running}}<p class="running">A reconciliation run is in progress.</p>{{end}}
<form method="post" action="/api/run"><button type="submit">Run now</button></form>
<table>
<tr><th>Source</th><th>Schedule</th><th>Last updated</th><th>Sheets</th><th>Rows</th><th>Workbook</th></tr>
{{range .Sources}}
<tr>
<td><a href="{{.URL}}">{{.Name}}</a></td>
<td>{{.Schedule}}</td>
<td>{{with .LastUpdated}}{{.Format "2006-01-02 15:04 MST"}}{{end}}</td>
<td>{{len .Sheets}}</td>
<td>{{.TotalRows}}</td>
<td>{{if .HasArtifact}}present{{else}}missing{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// TotalRows sums snapshot rows across a source's sheets.
func (s SourceStatus) TotalRows() int {
	n := 0
	for _, sheet := range s.Sheets {
		n += sheet.Rows
	}
	return n
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.status()); err != nil {
		logging.Err(err).Msg("cannot render status page")
	}
}
