package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Quote is an inspirational quote shown on the dashboard
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// DefaultQuote is returned whenever the quote API cannot be used
var DefaultQuote = Quote{
	Text:   "The good physician treats the disease; the great physician treats the patient who has the disease.",
	Author: "William Osler",
}

// Client fetches a random quote. It never fails: any problem yields DefaultQuote.
type Client interface {
	Random(ctx context.Context) Quote
}

// HTTPClient reads quotes from a ZenQuotes-compatible endpoint
type HTTPClient struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a quote client for url
func NewClient(url string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "quotes",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Debug().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

// Random returns a random quote or DefaultQuote
func (c *HTTPClient) Random(ctx context.Context) Quote {
	if c.url == "" {
		return DefaultQuote
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		log.Debug().Err(err).Msg("quote unavailable, using default")
		return DefaultQuote
	}
	return out.(Quote)
}

func (c *HTTPClient) fetch(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote api returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Quote{}, err
	}
	return parseQuote(body)
}

type rawQuote struct {
	Q       string `json:"q"`
	A       string `json:"a"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

func (r rawQuote) quote() Quote {
	q := Quote{Text: r.Q, Author: r.A}
	if q.Text == "" {
		q.Text, q.Author = r.Content, r.Author
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Author = strings.TrimSpace(q.Author)
	return q
}

// parseQuote accepts ZenQuotes' [{"q","a"}] and Quotable's {"content","author"}
func parseQuote(body []byte) (Quote, error) {
	var list []rawQuote
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return Quote{}, fmt.Errorf("quote api returned no quotes")
		}
		return validQuote(list[0].quote())
	}
	var single rawQuote
	if err := json.Unmarshal(body, &single); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	return validQuote(single.quote())
}

func validQuote(q Quote) (Quote, error) {
	if q.Text == "" {
		return Quote{}, fmt.Errorf("quote api returned an empty quote")
	}
	return q, nil
}
