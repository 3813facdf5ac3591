package crawl_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements sitecontacts.DomainLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ sitecontacts.DomainLimiter = crawl.NewDomainLimiter(time.Second)
	})

	t.Run("allows immediate first request", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(time.Second)

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("spaces requests to the same host by the delay", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(100 * time.Millisecond)

		err := limiter.Wait(context.Background(), "example.com")
		require.NoError(t, err)

		start := time.Now()
		err = limiter.Wait(context.Background(), "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different hosts have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(time.Second)

		err := limiter.Wait(context.Background(), "example.com")
		require.NoError(t, err)

		start := time.Now()
		err = limiter.Wait(context.Background(), "other.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "different host should not wait")
	})

	t.Run("zero delay never waits", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(0)

		start := time.Now()
		for range 10 {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(time.Second)

		err := limiter.Wait(context.Background(), "example.com")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = limiter.Wait(ctx, "example.com")
		assert.Error(t, err, "should fail when context times out")
	})

	t.Run("concurrent requests are serialized per host", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10 * time.Millisecond)

		var wg sync.WaitGroup
		var completed atomic.Int32

		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background(), "example.com"); err == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load(), "all requests should complete")
	})

	t.Run("hosts of one site share a limit", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(100 * time.Millisecond)

		require.NoError(t, limiter.Wait(context.Background(), "www.acme.fr"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "acme.fr")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "acme.fr should wait after www.acme.fr")
		assert.Equal(t, 1, limiter.Len())
	})

	t.Run("drops idle sites once many are tracked", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(time.Millisecond)

		for i := range 300 {
			require.NoError(t, limiter.Wait(context.Background(), fmt.Sprintf("site%d.fr", i)))
		}
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background(), "last.fr"))

		assert.Less(t, limiter.Len(), 300)
	})

	t.Run("zero delay tracks nothing", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(0)

		require.NoError(t, limiter.Wait(context.Background(), "acme.fr"))

		assert.Zero(t, limiter.Len())
	})
}

func TestSiteKey(t *testing.T) {
	t.Parallel()

	for host, want := range map[string]string{
		"www.acme.fr":    "acme.fr",
		"shop.ACME.fr":   "acme.fr",
		"acme.fr:8443":   "acme.fr",
		"www.acme.co.uk": "acme.co.uk",
		"127.0.0.1:8080": "127.0.0.1",
		"localhost":      "localhost",
		"[::1]:443":      "::1",
		"www.acme.fr.":   "acme.fr",
	} {
		assert.Equal(t, want, crawl.SiteKey(host), host)
	}
}
