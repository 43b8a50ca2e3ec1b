package domain

// Analysis job status values.
const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusFailed     = "failed"
)

// AnalysisProgress is the externally visible state of one analysis job.
type AnalysisProgress struct {
	Total   int    `json:"total"`
	Current int    `json:"current"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AnalysisResult is the outcome of one batch analysis. Failed files are
// reported alongside the successes; a partially failed batch is still a
// success.
type AnalysisResult struct {
	Invoices    []InvoiceRecord `json:"invoices"`
	FailedFiles []string        `json:"failed_files"`
	DownloadURL string          `json:"download_url,omitempty"`
}
