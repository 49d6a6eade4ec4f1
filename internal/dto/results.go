package dto

// ExportFormat selects the results export renderer.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ResultsExport is a rendered results file ready to be streamed.
type ResultsExport struct {
	Filename    string
	ContentType string
	Body        []byte
}
