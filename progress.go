package sitecontacts

import (
	"context"
	"slices"
)

// LastRunLayout formats ProgressState.LastRun.
const LastRunLayout = "2006-01-02 15:04:05"

// Stats are aggregate counters over all result artifacts. They are always
// recomputed from the artifacts, never accumulated.
type Stats struct {
	TotalProcessed      int `json:"total_processed"`
	WebsitesOK          int `json:"websites_ok"`
	WebsitesUnavailable int `json:"websites_unavailable"`
	Success             int `json:"success"`
	NoContacts          int `json:"no_contacts"`
	EmailsFound         int `json:"emails_found"`
	PhonesFound         int `json:"phones_found"`
	Timeout             int `json:"timeout"`
	ConnectionFailed    int `json:"connection_failed"`
	DoesNotExist        int `json:"does_not_exist"`
	Error               int `json:"error"`
}

// AddTable counts every row of a result table.
func (s *Stats) AddTable(t *Table) {
	for row := range t.Rows {
		s.TotalProcessed++
		switch WebsiteStatus(t.Value(row, ColumnWebsiteStatus)) {
		case WebsiteOK:
			s.WebsitesOK++
		case WebsiteUnavailable:
			s.WebsitesUnavailable++
		}
		switch ScrapingResult(t.Value(row, ColumnScrapingResult)) {
		case ResultSuccess:
			s.Success++
		case ResultNoContacts:
			s.NoContacts++
		case ResultTimeout:
			s.Timeout++
		case ResultConnectionFailed:
			s.ConnectionFailed++
		case ResultDoesNotExist:
			s.DoesNotExist++
		case ResultError:
			s.Error++
		}
		if t.Value(row, ColumnEmailPrimary) != "" {
			s.EmailsFound++
		}
		if t.Value(row, ColumnPhonePrimary) != "" {
			s.PhonesFound++
		}
	}
}

// ProgressState is the checkpoint of a batch. It is a cache over the
// result artifacts and can always be re-derived from them.
type ProgressState struct {
	TotalChunks     int    `json:"total_chunks"`
	ChunkSize       int    `json:"chunk_size"`
	CompletedChunks []int  `json:"completed_chunks"`
	LastRun         string `json:"last_run"`
	Stats           Stats  `json:"stats"`
	InputFile       string `json:"input_file,omitempty"`
	InputHash       string `json:"input_hash,omitempty"`
}

// IsCompleted reports whether id is in the completed set.
func (p *ProgressState) IsCompleted(id int) bool {
	_, found := slices.BinarySearch(p.CompletedChunks, id)
	return found
}

// MarkCompleted adds id to the completed set, keeping it sorted and unique.
func (p *ProgressState) MarkCompleted(id int) {
	i, found := slices.BinarySearch(p.CompletedChunks, id)
	if !found {
		p.CompletedChunks = slices.Insert(p.CompletedChunks, i, id)
	}
}

// Pending returns the number of chunks not yet completed.
func (p *ProgressState) Pending() int {
	return p.TotalChunks - len(p.CompletedChunks)
}

// ProgressFile persists a ProgressState.
type ProgressFile interface {
	// Load returns ENOTFOUND if no progress has been saved yet.
	Load(ctx context.Context) (*ProgressState, error)

	// Save replaces the persisted state.
	Save(ctx context.Context, state *ProgressState) error
}
