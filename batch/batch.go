// Package batch runs a contact scrape over a large table in resumable
// chunks. Result artifacts are the source of truth; progress is a cache
// that is healed from them on every load.
package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitecontacts"
)

// FinalPrefix starts the name of every merged artifact.
const FinalPrefix = "contacts_FINAL_"

// FinalName returns the merged artifact name for t with the given extension,
// e.g. contacts_FINAL_20250102_150405.csv.
func FinalName(t time.Time, ext string) string {
	return FinalPrefix + t.Format("20060102_150405") + ext
}

// FingerprintFile returns the xxHash of the file at path as 16 hex digits.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", sitecontacts.Errorf(sitecontacts.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return "", err
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

var discardLogger = slog.New(slog.DiscardHandler)

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger
	}
	return l
}

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

// resultTable copies input and fills the output columns from records.
func resultTable(input *sitecontacts.Table, records []sitecontacts.ContactRecord) *sitecontacts.Table {
	out := input.Slice(0, input.Len())
	for _, name := range sitecontacts.OutputColumns {
		out.EnsureColumn(name)
	}
	for _, rec := range records {
		rec.ApplyTo(out, rec.Row)
	}
	return out
}
