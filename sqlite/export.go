package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitecontacts"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ sitecontacts.ExportService = (*ExportService)(nil)
	_ sitecontacts.TableWriter   = (*ExportService)(nil)
)

// ExportService implements sitecontacts.ExportService using SQLite.
type ExportService struct {
	db        *DB
	urlColumn string

	// Now returns the export timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewExportService creates a new ExportService reading website URLs from
// urlColumn.
func NewExportService(db *DB, urlColumn string) *ExportService {
	return &ExportService{db: db, urlColumn: urlColumn, Now: time.Now}
}

// hashTable computes an xxHash over every cell of t and returns a hex string.
func hashTable(t *sitecontacts.Table) string {
	d := xxhash.New()
	_, _ = d.WriteString(strings.Join(t.Header, "\x1f"))
	for _, row := range t.Rows {
		_, _ = d.WriteString("\x1e")
		_, _ = d.WriteString(strings.Join(row, "\x1f"))
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// WriteTable stores t as a new export.
func (s *ExportService) WriteTable(ctx context.Context, t *sitecontacts.Table) error {
	_, err := s.CreateExport(ctx, t)
	return err
}

// CreateExport inserts the export and all its contacts in one transaction.
// A row whose result contradicts its contacts or status fails the whole
// export with EINVALID.
func (s *ExportService) CreateExport(ctx context.Context, t *sitecontacts.Table) (*sitecontacts.Export, error) {
	if err := t.RequireColumns(s.urlColumn); err != nil {
		return nil, err
	}

	export := &sitecontacts.Export{
		ID:          uuid.New().String(),
		CreatedAt:   s.Now().UTC().Truncate(time.Second),
		RowCount:    t.Len(),
		ContentHash: hashTable(t),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO exports (id, created_at, row_count, content_hash)
		VALUES (?, ?, ?, ?)
	`, export.ID, export.CreatedAt.Format(time.RFC3339), export.RowCount, export.ContentHash); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (id, export_id, position, url, email_primary, email_additional, country,
			phone_primary, phone_additional, website_status, scraping_result, row_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for row := range t.Rows {
		rec := sitecontacts.RecordFromTable(t, row, s.urlColumn)
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		cells := make(map[string]string, len(t.Header))
		for _, name := range t.Header {
			cells[name] = t.Value(row, name)
		}
		rowJSON, err := json.Marshal(cells)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), export.ID, row, rec.URL,
			rec.PrimaryEmail(), strings.Join(rec.Emails[min(1, len(rec.Emails)):], "; "),
			rec.Country,
			rec.PrimaryPhone(), strings.Join(rec.Phones[min(1, len(rec.Phones)):], "; "),
			string(rec.WebsiteStatus), string(rec.ScrapingResult), string(rowJSON),
		); err != nil {
			return nil, fmt.Errorf("insert row %d: %w", row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return export, nil
}

// FindExports returns all exports, newest first.
func (s *ExportService) FindExports(ctx context.Context) ([]*sitecontacts.Export, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, row_count, content_hash
		FROM exports
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*sitecontacts.Export
	for rows.Next() {
		var e sitecontacts.Export
		var createdAt string
		if err := rows.Scan(&e.ID, &createdAt, &e.RowCount, &e.ContentHash); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		exports = append(exports, &e)
	}
	return exports, rows.Err()
}

// FindContacts retrieves contacts matching the filter in export order.
func (s *ExportService) FindContacts(ctx context.Context, filter sitecontacts.ContactFilter) ([]*sitecontacts.ExportedContact, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT export_id, position, url, email_primary, email_additional, country,
		phone_primary, phone_additional, website_status, scraping_result, row_json
		FROM contacts WHERE 1=1`)

	if filter.ExportID != nil {
		query.WriteString(" AND export_id = ?")
		args = append(args, *filter.ExportID)
	}
	if filter.Country != nil {
		query.WriteString(" AND country = ?")
		args = append(args, *filter.Country)
	}
	if filter.Result != nil {
		query.WriteString(" AND scraping_result = ?")
		args = append(args, string(*filter.Result))
	}
	query.WriteString(" ORDER BY export_id, position")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*sitecontacts.ExportedContact
	for rows.Next() {
		var (
			c                             sitecontacts.ExportedContact
			emailPrimary, emailAdditional string
			phonePrimary, phoneAdditional string
			websiteStatus, scrapingResult string
			rowJSON                       string
		)
		if err := rows.Scan(&c.ExportID, &c.Position, &c.Record.URL, &emailPrimary, &emailAdditional,
			&c.Record.Country, &phonePrimary, &phoneAdditional, &websiteStatus, &scrapingResult, &rowJSON); err != nil {
			return nil, err
		}
		c.Record.Row = c.Position
		c.Record.Emails = joinLists(emailPrimary, emailAdditional)
		c.Record.Phones = joinLists(phonePrimary, phoneAdditional)
		c.Record.WebsiteStatus = sitecontacts.WebsiteStatus(websiteStatus)
		c.Record.ScrapingResult = sitecontacts.ScrapingResult(scrapingResult)
		if err := json.Unmarshal([]byte(rowJSON), &c.Row); err != nil {
			return nil, fmt.Errorf("failed to parse row_json: %w", err)
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}
