package schedule

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var logger = log.New(log.Writer(), "[schedule] ", log.LstdFlags)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Window bounds the schedule query.
type Window struct {
	From time.Time
	To   time.Time
}

// Fetcher pulls the paged flight schedule from the airport's flight
// search endpoint.
type Fetcher struct {
	baseURL string
	pages   int
	window  Window
	client  *http.Client
}

func NewFetcher(baseURL string, pages int, window Window) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		pages:   pages,
		window:  window,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchAll concatenates all schedule pages for one direction into a
// single list sorted by expected time. Pages that fail to download or
// parse are logged and skipped; the fetch never aborts as a whole.
func (f *Fetcher) FetchAll(arrivals bool) []Flight {
	var all []Flight
	for page := 1; page <= f.pages; page++ {
		html, err := f.fetchPage(page, arrivals)
		if err != nil {
			logger.Printf("failed to fetch schedule page %d: %s", page, err)
			continue
		}

		flights, err := ParseSchedule(html)
		if err != nil {
			logger.Printf("failed to parse schedule page %d: %s", page, err)
			continue
		}

		all = append(all, flights...)
	}

	sortByTime(all)
	return all
}

func (f *Fetcher) fetchPage(page int, arrivals bool) (string, error) {
	direction := "departures"
	if arrivals {
		direction = "arrivals"
	}

	const timeLayout = "2006-01-02T15:04:05"
	query := url.Values{}
	query.Set("from", f.window.From.Format(timeLayout))
	query.Set("allow_scroll_back", "1")
	query.Set("per_page", "50")
	query.Set("min_date", f.window.From.Format(timeLayout))
	query.Set("max_date", f.window.To.Format(timeLayout))
	query.Set("page", strconv.Itoa(page))
	query.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	req, err := http.NewRequest(http.MethodGet, f.baseURL+"/"+direction+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	// The airport's firewall rejects requests without browser-like headers.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", f.baseURL+"/arrivals")

	res, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("schedule page returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
