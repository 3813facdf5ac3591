package sitecontacts_test

import (
	"testing"

	"github.com/fwojciec/sitecontacts"
	"github.com/stretchr/testify/assert"
)

func TestStats_AddTable(t *testing.T) {
	t.Parallel()

	table := sitecontacts.NewTable([]string{"WEBSITE"})
	table.Rows = make([][]string, 4)
	records := []sitecontacts.ContactRecord{
		{Emails: []string{"a@a.fr"}, Phones: []string{"+33491541952"}, WebsiteStatus: sitecontacts.WebsiteOK, ScrapingResult: sitecontacts.ResultSuccess},
		{WebsiteStatus: sitecontacts.WebsiteOK, ScrapingResult: sitecontacts.ResultNoContacts},
		{WebsiteStatus: sitecontacts.WebsiteUnavailable, ScrapingResult: sitecontacts.ResultConnectionFailed},
		{WebsiteStatus: sitecontacts.WebsiteUnavailable, ScrapingResult: sitecontacts.ResultNoURL},
	}
	for i := range records {
		table.Rows[i] = []string{""}
		records[i].ApplyTo(table, i)
	}

	var stats sitecontacts.Stats
	stats.AddTable(table)

	assert.Equal(t, sitecontacts.Stats{
		TotalProcessed:      4,
		WebsitesOK:          2,
		WebsitesUnavailable: 2,
		Success:             1,
		NoContacts:          1,
		EmailsFound:         1,
		PhonesFound:         1,
		ConnectionFailed:    1,
	}, stats)
}

func TestProgressState_MarkCompleted(t *testing.T) {
	t.Parallel()

	p := &sitecontacts.ProgressState{TotalChunks: 5}

	p.MarkCompleted(3)
	p.MarkCompleted(1)
	p.MarkCompleted(3)

	assert.Equal(t, []int{1, 3}, p.CompletedChunks)
	assert.True(t, p.IsCompleted(3))
	assert.False(t, p.IsCompleted(2))
	assert.Equal(t, 3, p.Pending())
}
