// Package migration reconciles gallery rows between the public directory and
// the object store. Jobs are best effort: every item is attempted, failures
// are recorded and nothing is rolled back. Re-running a job continues where
// a previous run stopped because each item checks its current URL first.
package migration

// Status is the per-item outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ItemResult describes what happened to one file or row.
type ItemResult struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Status   Status `json:"status"`
	URL      string `json:"url,omitempty"`
	// Suggested is only set by SuggestURLs.
	Suggested string `json:"suggested_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// Report is returned by every job.
type Report struct {
	Job     string       `json:"job"`
	Summary Summary      `json:"summary"`
	Results []ItemResult `json:"results"`
}

func newReport(job string) *Report {
	return &Report{Job: job, Results: []ItemResult{}}
}

func (r *Report) add(res ItemResult) {
	r.Results = append(r.Results, res)
	r.Summary.Total++
	switch res.Status {
	case StatusSuccess:
		r.Summary.Successful++
	case StatusFailed:
		r.Summary.Failed++
	case StatusSkipped:
		r.Summary.Skipped++
	}
}

func (r *Report) fail(id, filename string, err error) {
	r.add(ItemResult{ID: id, Filename: filename, Status: StatusFailed, Error: err.Error()})
}
