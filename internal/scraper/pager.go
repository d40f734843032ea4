package scraper

// State is the pagination state after the latest page observation.
type State int

const (
	StateHasNext State = iota
	StateNoNext
	StateMaxReached
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateHasNext:
		return "has_next"
	case StateNoNext:
		return "no_next"
	case StateMaxReached:
		return "max_reached"
	default:
		return "failed"
	}
}

// maxConsecutiveNavFailures is how many page turns may fail in a row before
// pagination is abandoned. Records collected so far are still persisted.
const maxConsecutiveNavFailures = 2

// Pager bounds the scrape loop: it continues only while a next-page control
// is present and the configured page cap has not been hit.
type Pager struct {
	maxPages int
	page     int
	failures int
	state    State
}

func NewPager(maxPages int) *Pager {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Pager{maxPages: maxPages, state: StateHasNext}
}

// Advance records a successfully scraped page and returns the new state.
// hasNext reports whether the page carried a next-page control.
func (p *Pager) Advance(hasNext bool) State {
	p.failures = 0
	p.page++
	switch {
	case p.page >= p.maxPages:
		p.state = StateMaxReached
	case !hasNext:
		p.state = StateNoNext
	default:
		p.state = StateHasNext
	}
	return p.state
}

// Fail records a navigation failure. Repeated consecutive failures move the
// pager to StateFailed.
func (p *Pager) Fail() State {
	p.failures++
	if p.failures >= maxConsecutiveNavFailures {
		p.state = StateFailed
	}
	return p.state
}

// Page is the count of pages scraped so far.
func (p *Pager) Page() int { return p.page }

func (p *Pager) State() State { return p.state }
