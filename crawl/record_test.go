package crawl_test

import (
	"testing"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecord(t *testing.T) {
	t.Parallel()

	t.Run("collapses phones by core and infers country from the first usable phone", func(t *testing.T) {
		t.Parallel()

		res := &sitecontacts.ScrapeResult{
			Emails: []string{"info@acme.fr"},
			Phones: []string{"0479059522", "+33479059522", "+3225551212"},
			Result: sitecontacts.ResultSuccess,
		}

		rec := crawl.BuildRecord(4, "acme.com", res)

		assert.Equal(t, 4, rec.Row)
		assert.Equal(t, []string{"0479059522", "+3225551212"}, rec.Phones)
		assert.Equal(t, "BE", rec.Country)
		assert.Equal(t, sitecontacts.WebsiteOK, rec.WebsiteStatus)
		require.NoError(t, rec.Validate())
	})

	t.Run("infers country from domain for unavailable sites", func(t *testing.T) {
		t.Parallel()

		rec := crawl.BuildRecord(0, "boulangerie.fr", &sitecontacts.ScrapeResult{Result: sitecontacts.ResultConnectionFailed})

		assert.Equal(t, "FR", rec.Country)
		assert.Equal(t, sitecontacts.WebsiteUnavailable, rec.WebsiteStatus)
		require.NoError(t, rec.Validate())
	})

	t.Run("falls back to unknown country", func(t *testing.T) {
		t.Parallel()

		rec := crawl.BuildRecord(0, "acme.com", &sitecontacts.ScrapeResult{Result: sitecontacts.ResultNoContacts})

		assert.Equal(t, sitecontacts.CountryUnknown, rec.Country)
	})

	t.Run("records missing URL without country", func(t *testing.T) {
		t.Parallel()

		rec := crawl.BuildRecord(2, "", &sitecontacts.ScrapeResult{Result: sitecontacts.ResultNoURL})

		assert.Equal(t, sitecontacts.WebsiteUnavailable, rec.WebsiteStatus)
		assert.Empty(t, rec.Country)
		require.NoError(t, rec.Validate())
	})
}
