package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// LocalFetcher fetches HTML via net/http and follows redirects.
type LocalFetcher struct {
	client *http.Client
	opts   Options
}

// NewLocalFetcher creates a LocalFetcher bounded by opts.Timeout.
func NewLocalFetcher(opts Options) *LocalFetcher {
	opts = opts.withDefaults()
	return &LocalFetcher{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
			},
		},
	}
}

func (l *LocalFetcher) Name() string { return "http" }

// Fetch GETs targetURL and returns the body capped at MaxBody bytes.
func (l *LocalFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: create request")
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxBody))
	if err != nil {
		return nil, eris.Wrap(err, "http: read body")
	}
	latency := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("http: status %d for %s", resp.StatusCode, targetURL)
	}

	return &Page{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Latency:    latency,
		Source:     l.Name(),
	}, nil
}
