package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/crawl"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want sitecontacts.ScrapingResult
	}{
		{"error status", &sitecontacts.StatusError{StatusCode: 404, URL: "https://x.fr"}, sitecontacts.ResultDoesNotExist},
		{"wrapped error status", fmt.Errorf("get: %w", &sitecontacts.StatusError{StatusCode: 500}), sitecontacts.ResultDoesNotExist},
		{"deadline", context.DeadlineExceeded, sitecontacts.ResultTimeout},
		{"client timeout", &url.Error{Op: "Get", URL: "https://x.fr", Err: timeoutError{}}, sitecontacts.ResultTimeout},
		{"dns failure", &url.Error{Op: "Get", URL: "https://x.invalid", Err: &net.DNSError{Err: "no such host", Name: "x.invalid"}}, sitecontacts.ResultConnectionFailed},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, sitecontacts.ResultConnectionFailed},
		{"closed connection", &url.Error{Op: "Get", URL: "https://x.fr", Err: io.EOF}, sitecontacts.ResultConnectionFailed},
		{"anything else", errors.New("unsupported protocol scheme"), sitecontacts.ResultError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, crawl.Classify(tc.err))
		})
	}
}
