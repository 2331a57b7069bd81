package domain

// ArchiveReport summarises the indexing of a single export archive.
type ArchiveReport struct {
	ExportFile    string
	Source        Source
	Conversations int
	Messages      int
	Artifacts     int
}

// RunReport summarises an indexing run over a directory of archives.
// A failed archive is recorded here rather than aborting the run.
type RunReport struct {
	Archives []ArchiveReport
	Failures []ArchiveFailure
}

// ArchiveFailure records one archive that could not be ingested.
type ArchiveFailure struct {
	ExportFile string
	Err        error
}

// TotalConversations sums conversation counts across all archives.
func (r RunReport) TotalConversations() int {
	total := 0
	for _, a := range r.Archives {
		total += a.Conversations
	}
	return total
}

// TotalMessages sums message counts across all archives.
func (r RunReport) TotalMessages() int {
	total := 0
	for _, a := range r.Archives {
		total += a.Messages
	}
	return total
}
