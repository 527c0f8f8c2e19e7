package server

import (
	"html/template"
	"net/http"
	"sort"
	"strings"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>logisticfit</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.state-completed { color: #2a7; }
.state-failed { color: #c33; }
.state-running { color: #27c; }
</style>
</head>
<body>
<h1>Fit Jobs</h1>
{{if .Jobs}}
<table>
<tr><th>ID</th><th>State</th><th>Dataset</th><th>Features</th><th>Solver</th><th>Evals</th><th>Best Loss</th><th>Train Acc</th><th>Test Acc</th><th>Charts</th></tr>
{{range .Jobs}}
<tr>
<td><a href="/api/v1/jobs/{{.ID}}/status">{{.ShortID}}</a></td>
<td class="state-{{.State}}">{{.State}}</td>
<td>{{.Dataset}}</td>
<td>{{.Features}}</td>
<td>{{.Solver}}</td>
<td>{{.Iterations}}</td>
<td>{{printf "%.4f" .BestLoss}}</td>
<td>{{printf "%.3f" .TrainAccuracy}}</td>
<td>{{printf "%.3f" .TestAccuracy}}</td>
<td><a href="/api/v1/jobs/{{.ID}}/boundary.png">boundary</a> <a href="/api/v1/jobs/{{.ID}}/loss.png">loss</a></td>
</tr>
{{end}}
</table>
{{else}}
<p>No jobs yet. POST a config to /api/v1/jobs to start one.</p>
{{end}}
</body>
</html>
`))

type jobListItem struct {
	ID            string
	ShortID       string
	State         JobState
	Dataset       string
	Features      string
	Solver        string
	Iterations    int
	BestLoss      float64
	TrainAccuracy float64
	TestAccuracy  float64
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	jobs := s.jobManager.ListJobs()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	items := make([]jobListItem, len(jobs))
	for i, job := range jobs {
		shortID := job.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		items[i] = jobListItem{
			ID:            job.ID,
			ShortID:       shortID,
			State:         job.State,
			Dataset:       job.Config.Dataset,
			Features:      strings.Join(job.Config.Features, ", "),
			Solver:        job.Config.Solver,
			Iterations:    job.Iterations,
			BestLoss:      job.BestLoss,
			TrainAccuracy: job.TrainAccuracy,
			TestAccuracy:  job.TestAccuracy,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]interface{}{"Jobs": items}); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
