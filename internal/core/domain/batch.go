package domain

// BatchFilters are the per-query filters of a batch spec. Pointer and
// zero semantics mirror SearchFilter; the JSON shape is the on-disk
// batch file format.
type BatchFilters struct {
	Source      string `json:"source,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	MinMessages int    `json:"min_messages,omitempty"`
	MaxMessages int    `json:"max_messages,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// BatchQuery is one named query inside a batch project. It is either
// a conversation search or, when ExtractCode is set, a code-block
// extraction.
type BatchQuery struct {
	Name            string       `json:"name"`
	Search          string       `json:"search,omitempty"`
	IncludeMessages bool         `json:"include_messages,omitempty"`
	ExtractCode     bool         `json:"extract_code,omitempty"`
	CodeLanguage    string       `json:"code_language,omitempty"`
	Filters         BatchFilters `json:"filters,omitempty"`
}

// BatchProject is a declarative batch spec: a named project with an
// ordered list of queries.
type BatchProject struct {
	ProjectName string       `json:"project_name"`
	Queries     []BatchQuery `json:"queries"`
}

// Batch query statuses.
const (
	BatchStatusSuccess = "success"
	BatchStatusError   = "error"
)

// BatchQueryResult records the outcome of one batch query. A failed
// query never aborts the remaining batch.
type BatchQueryResult struct {
	QueryName   string `json:"query_name"`
	Search      string `json:"search,omitempty"`
	Status      string `json:"status"`
	ResultCount int    `json:"result_count,omitempty"`
	ResultFile  string `json:"result_file,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchSummary is the final per-run summary written alongside the
// per-query results.
type BatchSummary struct {
	ProjectName string             `json:"project_name"`
	RunID       string             `json:"run_id"`
	Timestamp   string             `json:"timestamp"`
	TotalQueries int               `json:"total_queries"`
	Successful  int                `json:"successful"`
	Failed      int                `json:"failed"`
	Results     []BatchQueryResult `json:"results"`
}

// QueryRecord is one past result file in a project index.
type QueryRecord struct {
	Timestamp   string `json:"timestamp"`
	ResultFile  string `json:"result_file"`
	ResultCount int    `json:"result_count"`
	Search      string `json:"search,omitempty"`
}

// ProjectIndex lists all past query result files of a project.
type ProjectIndex struct {
	ProjectName string                   `json:"project_name"`
	Queries     map[string][]QueryRecord `json:"queries"`
}
