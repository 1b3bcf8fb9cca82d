// Package scrape fetches prospect web pages over HTTP.
package scrape

import (
	"context"
	"net/http"
	"time"
)

// Page is a fetched HTML document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       []byte
	Latency    time.Duration
	Source     string // "http" or "colly"
}

// Fetcher retrieves a single URL. Non-2xx responses are errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Name() string
}

// Options configures both fetcher backends.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBody   int64
}

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultMaxBody   = 2 << 20
)

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	return o
}

// browserHeaders are sent with every request alongside the User-Agent.
var browserHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
}

// New returns the fetcher for backend ("http" or "colly").
func New(backend string, opts Options) Fetcher {
	if backend == "colly" {
		return NewCollyFetcher(opts)
	}
	return NewLocalFetcher(opts)
}
