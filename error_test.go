package sitecontacts_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/sitecontacts"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := sitecontacts.Errorf(sitecontacts.ENOTFOUND, "chunk %d not found", 3)

	assert.Equal(t, sitecontacts.ENOTFOUND, sitecontacts.ErrorCode(err))
	assert.Equal(t, "chunk 3 not found", sitecontacts.ErrorMessage(err))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error has no code", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, sitecontacts.ErrorCode(nil))
	})

	t.Run("unwraps wrapped application errors", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("load: %w", sitecontacts.Errorf(sitecontacts.EINVALID, "bad"))
		assert.Equal(t, sitecontacts.EINVALID, sitecontacts.ErrorCode(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, sitecontacts.EINTERNAL, sitecontacts.ErrorCode(errors.New("boom")))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("nil error has no message", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, sitecontacts.ErrorMessage(nil))
	})

	t.Run("plain errors return their text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "boom", sitecontacts.ErrorMessage(errors.New("boom")))
	})
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetch: %w", &sitecontacts.StatusError{StatusCode: 404, URL: "https://example.com"})

	var statusErr *sitecontacts.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 404, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 404 for https://example.com")
}
