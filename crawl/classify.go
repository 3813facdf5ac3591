package crawl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/fwojciec/sitecontacts"
)

// Classify maps a fetch or parse error to a scraping outcome:
// error statuses are DoesNotExist, deadlines are Timeout, transport
// failures are ConnectionFailed and anything else is Error.
func Classify(err error) sitecontacts.ScrapingResult {
	var (
		statusErr *sitecontacts.StatusError
		netErr    net.Error
	)
	switch {
	case err == nil:
		return sitecontacts.ResultSuccess
	case errors.As(err, &statusErr):
		return sitecontacts.ResultDoesNotExist
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return sitecontacts.ResultTimeout
	case isConnectionError(err):
		return sitecontacts.ResultConnectionFailed
	default:
		return sitecontacts.ResultError
	}
}

func isConnectionError(err error) bool {
	var (
		dnsErr    *net.DNSError
		opErr     *net.OpError
		certErr   *tls.CertificateVerificationError
		authErr   x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		recordErr tls.RecordHeaderError
	)
	return errors.As(err, &dnsErr) ||
		errors.As(err, &opErr) ||
		errors.As(err, &certErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &recordErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
