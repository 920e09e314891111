package ical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"schedsync/src-sync/utils"
)

// Expansion never produces more than this many occurrences per event, no
// matter what COUNT/UNTIL say. Keeps a malformed or century-long rule from
// flooding the schedule.
const MaxOccurrences = 200

type Frequency string

const (
	FreqDaily   Frequency = "DAILY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqMonthly Frequency = "MONTHLY"
	FreqYearly  Frequency = "YEARLY"
)

// The subset of RFC5545 recurrence the pipeline supports. BYDAY/BYMONTHDAY
// and friends are ignored on parse.
type RecurrenceRule struct {
	Freq     Frequency
	Interval int
	Count    int       // 0 = unbounded
	Until    time.Time // zero = unbounded
}

// ParseRecurrenceRule parses an RRULE value. A rule without FREQ (or with an
// unsupported FREQ) yields nil, which expands to just the master start.
func ParseRecurrenceRule(value string, defaultLoc *time.Location, warns *utils.Warnings) (*RecurrenceRule, error) {
	fields := make(map[string]string)
	for _, part := range strings.Split(strings.TrimSpace(value), ";") {
		key, val, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		fields[strings.ToUpper(key)] = val
	}

	freq := Frequency(strings.ToUpper(fields["FREQ"]))
	switch freq {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("ParseRecurrenceRule: unsupported FREQ %q", freq)
	}

	rule := &RecurrenceRule{
		Freq:     freq,
		Interval: 1,
	}
	if raw, ok := fields["INTERVAL"]; ok {
		interval, err := strconv.Atoi(raw)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("ParseRecurrenceRule: invalid INTERVAL %q", raw)
		}
		rule.Interval = interval
	}
	if raw, ok := fields["COUNT"]; ok {
		count, err := strconv.Atoi(raw)
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("ParseRecurrenceRule: invalid COUNT %q", raw)
		}
		rule.Count = count
	}
	if raw, ok := fields["UNTIL"]; ok {
		until, _, err := resolveToken(raw, nil, defaultLoc, warns)
		if err != nil {
			return nil, fmt.Errorf("ParseRecurrenceRule: invalid UNTIL %q", raw)
		}
		rule.Until = until
	}
	return rule, nil
}

// ExpandStarts generates the ordered, deduplicated start instants for a
// master event: the rule-driven sequence (always beginning with start)
// unioned with any RDATE instants.
func ExpandStarts(start time.Time, rule *RecurrenceRule, rDates []time.Time) []time.Time {
	starts := []time.Time{start}

	if rule != nil {
		for len(starts) < MaxOccurrences {
			if rule.Count > 0 && len(starts) >= rule.Count {
				break
			}
			next := rule.step(starts[len(starts)-1])
			if !rule.Until.IsZero() && next.After(rule.Until) {
				break
			}
			starts = append(starts, next)
		}
	}

	starts = append(starts, rDates...)

	seen := make(map[string]struct{}, len(starts))
	deduped := starts[:0]
	for _, t := range starts {
		key := instantKey(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, t)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Before(deduped[j])
	})
	return deduped
}

func (r *RecurrenceRule) step(t time.Time) time.Time {
	switch r.Freq {
	case FreqDaily:
		return t.AddDate(0, 0, r.Interval)
	case FreqWeekly:
		return t.AddDate(0, 0, 7*r.Interval)
	case FreqMonthly:
		return addMonthsClamped(t, r.Interval)
	case FreqYearly:
		return addMonthsClamped(t, 12*r.Interval)
	default:
		return t
	}
}

// addMonthsClamped shifts the calendar date by whole months, keeping the
// wall clock and clamping the day-of-month to the target month's length
// (Jan 31 + 1 month = Feb 28/29, never Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	total := int(month) - 1 + months
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)
	if total < 0 {
		// Go's % keeps the sign of the dividend.
		targetYear = year + (total-11)/12
		targetMonth = time.Month((total%12+12)%12 + 1)
	}

	if last := daysInMonth(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
