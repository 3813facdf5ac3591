package sitecontacts_test

import (
	"testing"

	"github.com/fwojciec/sitecontacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRecord_Columns(t *testing.T) {
	t.Parallel()

	t.Run("separates primary values and sorts additional ones", func(t *testing.T) {
		t.Parallel()

		rec := sitecontacts.ContactRecord{
			Emails:         []string{"zed@example.fr", "contact@example.fr", "b@example.fr"},
			Phones:         []string{"+33491541952", "0612345678", "+33140000000"},
			Country:        "FR",
			WebsiteStatus:  sitecontacts.WebsiteOK,
			ScrapingResult: sitecontacts.ResultSuccess,
		}

		cols := rec.Columns()

		assert.Equal(t, "zed@example.fr", cols[sitecontacts.ColumnEmailPrimary])
		assert.Equal(t, "b@example.fr; contact@example.fr", cols[sitecontacts.ColumnEmailAdditional])
		assert.Equal(t, "'+33491541952", cols[sitecontacts.ColumnPhonePrimary])
		assert.Equal(t, "'+33140000000; '0612345678", cols[sitecontacts.ColumnPhoneAdditional])
		assert.Equal(t, "FR", cols[sitecontacts.ColumnCountry])
		assert.Equal(t, "OK", cols[sitecontacts.ColumnWebsiteStatus])
		assert.Equal(t, "Success", cols[sitecontacts.ColumnScrapingResult])
	})

	t.Run("leaves empty cells when nothing was found", func(t *testing.T) {
		t.Parallel()

		rec := sitecontacts.ContactRecord{
			WebsiteStatus:  sitecontacts.WebsiteUnavailable,
			ScrapingResult: sitecontacts.ResultTimeout,
		}

		cols := rec.Columns()

		assert.Empty(t, cols[sitecontacts.ColumnPhonePrimary])
		assert.Empty(t, cols[sitecontacts.ColumnEmailAdditional])
		assert.Equal(t, "Timeout", cols[sitecontacts.ColumnScrapingResult])
	})
}

func TestContactRecord_ApplyTo(t *testing.T) {
	t.Parallel()

	table := sitecontacts.NewTable([]string{"NAME", "WEBSITE"})
	table.Rows = [][]string{{"Acme", "acme.fr"}, {"Other", "other.fr"}}
	rec := sitecontacts.ContactRecord{
		URL:            "acme.fr",
		Emails:         []string{"info@acme.fr"},
		Phones:         []string{"+33491541952"},
		Country:        "FR",
		WebsiteStatus:  sitecontacts.WebsiteOK,
		ScrapingResult: sitecontacts.ResultSuccess,
	}

	rec.ApplyTo(table, 0)

	assert.Equal(t, append([]string{"NAME", "WEBSITE"}, sitecontacts.OutputColumns...), table.Header)
	assert.Equal(t, "info@acme.fr", table.Value(0, sitecontacts.ColumnEmailPrimary))
	assert.Equal(t, "Acme", table.Value(0, "NAME"))
	assert.Empty(t, table.Value(1, sitecontacts.ColumnEmailPrimary))

	back := sitecontacts.RecordFromTable(table, 0, "WEBSITE")
	assert.Equal(t, rec.Emails, back.Emails)
	assert.Equal(t, rec.Phones, back.Phones)
	assert.Equal(t, sitecontacts.ResultSuccess, back.ScrapingResult)
	require.NoError(t, back.Validate())
}

func TestContactRecord_Validate(t *testing.T) {
	t.Parallel()

	t.Run("success requires contacts", func(t *testing.T) {
		t.Parallel()

		rec := sitecontacts.ContactRecord{WebsiteStatus: sitecontacts.WebsiteOK, ScrapingResult: sitecontacts.ResultSuccess}

		assert.Equal(t, sitecontacts.EINVALID, sitecontacts.ErrorCode(rec.Validate()))
	})

	t.Run("contacts require success", func(t *testing.T) {
		t.Parallel()

		rec := sitecontacts.ContactRecord{
			Emails:         []string{"a@b.fr"},
			WebsiteStatus:  sitecontacts.WebsiteOK,
			ScrapingResult: sitecontacts.ResultNoContacts,
		}

		assert.Error(t, rec.Validate())
	})

	t.Run("status must match result", func(t *testing.T) {
		t.Parallel()

		rec := sitecontacts.ContactRecord{WebsiteStatus: sitecontacts.WebsiteOK, ScrapingResult: sitecontacts.ResultNoURL}

		assert.Error(t, rec.Validate())
	})
}

func TestParseScrapingResult(t *testing.T) {
	t.Parallel()

	t.Run("accepts results written as flags", func(t *testing.T) {
		t.Parallel()

		for in, want := range map[string]sitecontacts.ScrapingResult{
			"Success":           sitecontacts.ResultSuccess,
			"success":           sitecontacts.ResultSuccess,
			"no-contacts-found": sitecontacts.ResultNoContacts,
			"Connection Failed": sitecontacts.ResultConnectionFailed,
			"does_not_exist":    sitecontacts.ResultDoesNotExist,
			"NoURL":             sitecontacts.ResultNoURL,
		} {
			got, err := sitecontacts.ParseScrapingResult(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got, in)
		}
	})

	t.Run("rejects unknown results", func(t *testing.T) {
		t.Parallel()

		_, err := sitecontacts.ParseScrapingResult("Maybe")

		assert.Equal(t, sitecontacts.EINVALID, sitecontacts.ErrorCode(err))
	})
}

func TestTable_Append(t *testing.T) {
	t.Parallel()

	a := sitecontacts.NewTable([]string{"NAME", "WEBSITE"})
	a.Rows = [][]string{{"Acme", "acme.fr"}}
	b := sitecontacts.NewTable([]string{"WEBSITE", "NAME", "Country"})
	b.Rows = [][]string{{"other.fr", "Other", "FR"}}

	a.Append(b)

	require.Equal(t, 2, a.Len())
	assert.Equal(t, "Other", a.Value(1, "NAME"))
	assert.Equal(t, "FR", a.Value(1, "Country"))
	assert.Empty(t, a.Value(0, "Country"))
}

func TestTable_RequireColumns(t *testing.T) {
	t.Parallel()

	table := sitecontacts.NewTable([]string{"NAME"})

	err := table.RequireColumns("NAME", "WEBSITE")

	assert.Equal(t, sitecontacts.EINVALID, sitecontacts.ErrorCode(err))
	assert.Contains(t, sitecontacts.ErrorMessage(err), `"WEBSITE"`)
}
