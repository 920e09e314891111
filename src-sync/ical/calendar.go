// The `ical` package parses iCalendar feeds and expands their events into
// concrete occurrences.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Only the properties the schedule pipeline needs are interpreted; other
//   lines are kept verbatim in the RawEvent property bag.
// - VTIMEZONE and VALARM sections are ignored; local timezones are resolved
//   through the platform timezone database (TZID / configured default zone).
// - Recurrence support is FREQ/INTERVAL/COUNT/UNTIL plus RDATE/EXDATE and
//   RECURRENCE-ID overrides. BYDAY and friends are out of scope.
package ical

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"schedsync/src-sync/utils"
)

var foldedLinePattern = regexp.MustCompile("\r?\n[ \t]")

// Unfold merges folded continuation lines (a CRLF or LF followed by a single
// space or tab) back into their parent line. Unfolding already-unfolded text
// is a no-op.
func Unfold(text string) string {
	return foldedLinePattern.ReplaceAllString(text, "")
}

// Parse tokenizes a raw feed into one RawEvent per VEVENT block. Lines
// outside BEGIN:VEVENT/END:VEVENT are ignored, and so are nested component
// blocks (VALARM and friends) so an alarm's DESCRIPTION can never shadow
// the event's. Malformed lines inside a block are warned about and skipped,
// never fatal.
func Parse(text string, warns *utils.Warnings) []RawEvent {
	events := make([]RawEvent, 0)

	var current *RawEvent
	nestedDepth := 0
	for _, line := range strings.Split(Unfold(text), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		switch line {
		case "BEGIN:VEVENT":
			event := newRawEvent()
			current = &event
			nestedDepth = 0
			continue
		case "END:VEVENT":
			if current != nil {
				events = append(events, *current)
			}
			current = nil
			continue
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(line, "BEGIN:") {
			nestedDepth++
			continue
		}
		if strings.HasPrefix(line, "END:") {
			if nestedDepth > 0 {
				nestedDepth--
			}
			continue
		}
		if nestedDepth > 0 {
			continue
		}

		prop, err := parseContentLine(line)
		if err != nil {
			warns.Warnf("skipping malformed ICS line: %s", err)
			continue
		}
		current.add(prop)
	}

	return events
}

// ReadIcalFile loads a feed from a local path.
func ReadIcalFile(path string) ([]byte, *CustomError) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, NewCustomError("can't read ICS file", map[string]any{
			"path": path,
			"err":  err,
		})
	}
	return body, nil
}

// FetchIcalUrl downloads a feed over HTTP GET. Any 2xx body is accepted;
// everything else is a fatal fetch failure. One attempt, no retry.
func FetchIcalUrl(url_ string) ([]byte, *CustomError) {
	validUrl, err := url.ParseRequestURI(url_)
	if err != nil {
		return nil, NewCustomError("can't parse URL", map[string]any{
			"url": url_,
			"err": err,
		})
	}

	req, err := http.NewRequest("GET", validUrl.String(), nil)
	if err != nil {
		return nil, NewCustomError("can't create HTTP request", map[string]any{
			"url": url_,
			"err": err,
		})
	}
	req.Header.Set("User-Agent", "schedsync/1.0")
	req.Header.Set("Accept", "text/calendar, text/plain;q=0.9")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, NewCustomError("can't make HTTP request", map[string]any{
			"url": url_,
			"err": err,
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewCustomError("ICS request failed", map[string]any{
			"url":    url_,
			"status": resp.Status,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewCustomError("can't read response body", map[string]any{
			"url": url_,
			"err": err,
		})
	}
	return body, nil
}
