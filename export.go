package sitecontacts

import (
	"context"
	"time"
)

// Export is one merged batch saved to a database.
type Export struct {
	ID          string
	CreatedAt   time.Time
	RowCount    int
	ContentHash string
}

// ExportedContact is a contact row stored with an export.
type ExportedContact struct {
	ExportID string
	Position int
	Record   ContactRecord

	// Row holds every input cell keyed by column name.
	Row map[string]string
}

// ContactFilter narrows FindContacts. Nil fields match everything.
type ContactFilter struct {
	ExportID *string
	Country  *string
	Result   *ScrapingResult

	Limit  int
	Offset int
}

// ExportService stores merged results for querying.
type ExportService interface {
	// CreateExport stores every row of t as one export.
	CreateExport(ctx context.Context, t *Table) (*Export, error)

	// FindExports returns exports, newest first.
	FindExports(ctx context.Context) ([]*Export, error)

	// FindContacts returns contacts in export order.
	FindContacts(ctx context.Context, filter ContactFilter) ([]*ExportedContact, error)
}
