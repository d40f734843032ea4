package scraper

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// DomainPolicy enforces robots.txt and paces requests per domain. A scraper
// run only ever touches one storefront, but the policy is keyed by host so
// profiles for other sites share the same gate.
type DomainPolicy struct {
	userAgent string
	interval  time.Duration

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.Group
}

func NewDomainPolicy(userAgent string, interval time.Duration) *DomainPolicy {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &DomainPolicy{
		userAgent:   userAgent,
		interval:    interval,
		limiters:    make(map[string]*rate.Limiter),
		robotsCache: make(map[string]*robotstxt.Group),
	}
}

// Wait blocks until the per-domain limiter allows another request.
func (d *DomainPolicy) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}

	d.mu.Lock()
	limiter, ok := d.limiters[u.Host]
	if !ok {
		// burst of 1: the first request goes through, the rest are paced
		limiter = rate.NewLimiter(rate.Every(d.interval), 1)
		d.limiters[u.Host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// IsAllowed checks robots.txt for the target path. Fetch or parse errors are
// treated as allowed.
func (d *DomainPolicy) IsAllowed(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	group, cached := d.robotsCache[u.Host]
	if !cached {
		group = d.fetchGroup(u)
		d.robotsCache[u.Host] = group
	}

	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (d *DomainPolicy) fetchGroup(u *url.URL) *robotstxt.Group {
	resp, err := http.Get(u.Scheme + "://" + u.Host + "/robots.txt")
	if err != nil || resp.StatusCode != 200 {
		if resp != nil {
			resp.Body.Close()
		}
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(d.userAgent)
}
