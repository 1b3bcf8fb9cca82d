package scrape

import (
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
)

// CollyFetcher fetches pages with a gocolly collector. A fresh collector is
// built per call so visited-URL state never leaks between prospects.
type CollyFetcher struct {
	opts Options
}

// NewCollyFetcher creates a CollyFetcher.
func NewCollyFetcher(opts Options) *CollyFetcher {
	return &CollyFetcher{opts: opts.withDefaults()}
}

func (c *CollyFetcher) Name() string { return "colly" }

type collyResult struct {
	page *Page
	err  error
}

// Fetch visits targetURL and returns the first response.
func (c *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "colly: fetch")
	}

	collector := colly.NewCollector(
		colly.UserAgent(c.opts.UserAgent),
		colly.MaxBodySize(int(c.opts.MaxBody)),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(c.opts.Timeout)

	var page *Page
	start := time.Now()
	collector.OnRequest(func(r *colly.Request) {
		for k, v := range browserHeaders {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		header := http.Header{}
		if r.Headers != nil {
			header = *r.Headers
		}
		page = &Page{
			URL:        targetURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Header:     header,
			Body:       r.Body,
			Latency:    time.Since(start),
			Source:     c.Name(),
		}
	})

	done := make(chan collyResult, 1)
	go func() {
		err := collector.Visit(targetURL)
		done <- collyResult{page: page, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "colly: fetch")
	case res := <-done:
		if res.err != nil {
			return nil, eris.Wrapf(res.err, "colly: fetch %s", targetURL)
		}
		if res.page == nil {
			return nil, eris.Errorf("colly: no response for %s", targetURL)
		}
		if res.page.StatusCode < 200 || res.page.StatusCode > 299 {
			return nil, eris.Errorf("colly: status %d for %s", res.page.StatusCode, targetURL)
		}
		return res.page, nil
	}
}
