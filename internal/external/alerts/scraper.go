package alerts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wonny/scamdunk/pkg/httputil"
	"github.com/wonny/scamdunk/pkg/logger"
)

// Suspension is one row of the trading suspensions page
type Suspension struct {
	Ticker  string `json:"ticker"`
	Company string `json:"company"`
	Date    string `json:"date,omitempty"`
}

var (
	// "(Ticker: ABCD)" or "(Tickers: ABCD, EFGH)"
	tickerLabelPattern = regexp.MustCompile(`\(Tickers?:\s*([A-Z0-9., ]+)\)`)
	// "(ABCD)"
	tickerParenPattern = regexp.MustCompile(`\(([A-Z]{1,5})\)`)
	// "Jan. 5, 2024", "January 5, 2024", "01/05/2024"
	rowDatePattern = regexp.MustCompile(`([A-Z][a-z]{2,8}\.? \d{1,2}, \d{4}|\d{2}/\d{2}/\d{4})`)
)

// Scraper reads the SEC trading suspensions page
type Scraper struct {
	httpClient *httputil.Client
	limiter    *rate.Limiter
	url        string
	logger     *logger.Logger
}

// NewScraper creates a scraper for url. Requests are paced at one per second.
func NewScraper(httpClient *httputil.Client, url string, log *logger.Logger) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		url:        url,
		logger:     log,
	}
}

// Fetch downloads and parses the suspensions page
func (s *Scraper) Fetch(ctx context.Context) ([]Suspension, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := s.httpClient.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	out, err := ParseSuspensions(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"url":   s.url,
		"count": len(out),
	}).Debug("Fetched trading suspensions")
	return out, nil
}

// ParseSuspensions extracts tickers from table rows and listing entries.
// Rows without a recognisable ticker are skipped; each ticker is reported once.
func ParseSuspensions(r io.Reader) ([]Suspension, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var out []Suspension
	seen := make(map[string]struct{})

	doc.Find("table tr, .views-row, li.suspension").Each(func(_ int, row *goquery.Selection) {
		text := strings.Join(strings.Fields(row.Text()), " ")
		if text == "" {
			return
		}

		tickers := extractTickers(text)
		if len(tickers) == 0 {
			return
		}

		company := strings.TrimSpace(row.Find("a").First().Text())
		if company == "" {
			company = text
		}
		if i := strings.Index(company, "("); i > 0 {
			company = strings.TrimSpace(company[:i])
		}

		date := ""
		if m := rowDatePattern.FindString(text); m != "" {
			date = m
		}

		for _, t := range tickers {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, Suspension{Ticker: t, Company: company, Date: date})
		}
	})

	return out, nil
}

func extractTickers(text string) []string {
	var out []string
	for _, m := range tickerLabelPattern.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ' ' }) {
			part = strings.Trim(part, ".")
			if part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, m := range tickerParenPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// Tickers returns the tickers of suspensions in order
func Tickers(suspensions []Suspension) []string {
	out := make([]string, len(suspensions))
	for i, s := range suspensions {
		out[i] = s.Ticker
	}
	return out
}
