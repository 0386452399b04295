package dto

import (
	"net/url"
	"strconv"
)

// CloneRepositoryRequest is the body of POST /analysis/clone-repo and of a repository re-analysis.
type CloneRepositoryRequest struct {
	RepositoryURL string `json:"repositoryUrl"`
}

// AnalysisSearchParams filters GET /analysis/search.
type AnalysisSearchParams struct {
	Student  string
	Status   string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// Query encodes the non-empty filters.
func (p AnalysisSearchParams) Query() url.Values {
	values := url.Values{}
	setIf(values, "student", p.Student)
	setIf(values, "status", p.Status)
	setIf(values, "dateFrom", p.DateFrom)
	setIf(values, "dateTo", p.DateTo)
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		values.Set("offset", strconv.Itoa(p.Offset))
	}
	return values
}

// ExportFormat is a supported analysis export encoding.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
)

// Valid reports whether the backend accepts the format.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportJSON, ExportCSV, ExportPDF:
		return true
	}
	return false
}

func setIf(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
