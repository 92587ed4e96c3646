package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Flight is one parsed row of the airport schedule.
type Flight struct {
	Number string
	Time   time.Time
}

var dateRe = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

// ParseSchedule extracts flight rows from one page of the airport's
// flight search. The headline carries the initial date; date separator
// rows inside the table advance it for the rows that follow. The time
// cell is "scheduled | expected" and the expected time wins when present.
// Rows that fail to parse are skipped.
func ParseSchedule(html string) ([]Flight, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule page: %w", err)
	}

	currentDate := dateRe.FindString(doc.Find("h3.fp-flights-headline").Text())

	var flights []Flight
	doc.Find("table.fp-flights-table-large > tbody > tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("fp-flight-date") {
			if match := dateRe.FindString(row.Text()); match != "" {
				currentDate = match
			}
			return
		}
		if !row.HasClass("fp-flight-item") {
			return
		}

		number := strings.TrimSpace(row.Find("td.fp-flight-number").Text())
		timeStr := pickTime(row.Find("td.fp-flight-time-muc").Text())
		if number == "" || currentDate == "" || timeStr == "" {
			return
		}

		ts, err := time.ParseInLocation("02.01.2006 15:04", currentDate+" "+timeStr, time.Local)
		if err != nil {
			return
		}

		flights = append(flights, Flight{Number: number, Time: ts})
	})

	sortByTime(flights)
	return flights, nil
}

// pickTime resolves a "scheduled | expected" time cell. The expected time
// is used when present, otherwise the scheduled one.
func pickTime(cell string) string {
	cell = strings.TrimSpace(cell)
	if !strings.Contains(cell, "|") {
		return cell
	}

	parts := strings.SplitN(cell, "|", 2)
	if expected := strings.TrimSpace(parts[1]); expected != "" {
		return expected
	}
	return strings.TrimSpace(parts[0])
}

func sortByTime(flights []Flight) {
	sort.Slice(flights, func(i, j int) bool {
		return flights[i].Time.Before(flights[j].Time)
	})
}
