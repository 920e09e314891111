package schedule

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"schedsync/src-sync/content"
	"schedsync/src-sync/ical"
	"schedsync/src-sync/utils"
)

type Options struct {
	Now          time.Time
	Location     *time.Location
	TimezoneName string
	SourceURL    string

	// Behavior the two historical sync scripts disagreed on, surfaced as
	// explicit knobs instead of a silent pick.
	IncludeAllDay       bool
	KeepPastOccurrences bool
}

// Build joins resolved occurrences against the event catalog and venue
// directory and assembles the output document. Occurrences without a
// matching catalog record are dropped with a warning; occurrences starting
// before Now never reach `upcoming`.
func Build(occurrences []ical.Occurrence, catalog *content.Catalog, venues *content.VenueDirectory, warns *utils.Warnings, opts Options) *Document {
	doc := &Document{
		GeneratedAt: opts.Now.UTC().Format(time.RFC3339),
		Timezone:    opts.TimezoneName,
		Source: Source{
			Kind: "ics",
			URL:  opts.SourceURL,
		},
		Upcoming:       make([]*ScheduleEntry, 0),
		ScheduledSlugs: make([]string, 0),
		Other:          make([]OtherRecord, 0),
		BySlug:         make(map[string]*SlugBucket),
	}

	for _, record := range catalog.Records {
		doc.BySlug[record.Slug] = &SlugBucket{
			Slug:      record.Slug,
			Title:     record.Title,
			Intro:     record.Intro,
			Tagline:   record.Tagline,
			Banner:    record.Banner,
			TicketURL: record.TicketURL,
			PageURL:   record.PageURL,
			Upcoming:  make([]*ScheduleEntry, 0),
		}
	}

	seen := make(map[string]struct{})
	for _, occ := range occurrences {
		if occ.Summary == "" {
			slog.Debug("skipping untitled calendar entry", "uid", occ.UID)
			continue
		}
		record := catalog.Match(occ.Summary)
		if record == nil {
			warns.Warnf("skipping calendar entry without matching event: %q", occ.Summary)
			continue
		}
		if occ.AllDay && !opts.IncludeAllDay {
			slog.Debug("skipping all-day occurrence", "slug", record.Slug, "start", occ.StartTime)
			continue
		}

		entry := buildEntry(occ, record, venues, warns, opts)

		// redundant feed entries collapse onto one start key per slug
		key := entry.Slug + "|" + entry.StartUTC
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		bucket := doc.BySlug[entry.Slug]
		if opts.KeepPastOccurrences {
			bucket.Occurrences = append(bucket.Occurrences, entry)
		}
		if occ.StartTime.Before(opts.Now) {
			continue
		}
		bucket.Upcoming = append(bucket.Upcoming, entry)
		doc.Upcoming = append(doc.Upcoming, entry)
	}

	sortEntries(doc.Upcoming)
	scheduled := make(map[string]struct{})
	for _, entry := range doc.Upcoming {
		if _, ok := scheduled[entry.Slug]; ok {
			continue
		}
		scheduled[entry.Slug] = struct{}{}
		doc.ScheduledSlugs = append(doc.ScheduledSlugs, entry.Slug)
	}

	for _, bucket := range doc.BySlug {
		sortEntries(bucket.Upcoming)
		sortEntries(bucket.Occurrences)
		if len(bucket.Upcoming) > 0 {
			bucket.Next = bucket.Upcoming[0]
		}
	}

	for _, record := range catalog.Records {
		if _, ok := scheduled[record.Slug]; ok {
			continue
		}
		doc.Other = append(doc.Other, OtherRecord{
			Slug:      record.Slug,
			Title:     record.Title,
			Intro:     record.Intro,
			Banner:    record.Banner,
			PageURL:   record.PageURL,
			TicketURL: record.TicketURL,
		})
	}

	doc.Warnings = warns.Items()
	return doc
}

func buildEntry(occ ical.Occurrence, record *content.EventRecord, venues *content.VenueDirectory, warns *utils.Warnings, opts Options) *ScheduleEntry {
	local := occ.StartTime.In(opts.Location)
	loc := venues.Resolve(occ.RawLocation, warns)

	entry := &ScheduleEntry{
		Slug:        record.Slug,
		Title:       record.Title,
		Summary:     occ.Summary,
		Description: occ.Description,

		StartISO:  local.Format(time.RFC3339),
		StartUTC:  occ.StartTime.UTC().Format(time.RFC3339),
		Timezone:  opts.TimezoneName,
		DateLabel: local.Format("Mon, 02 Jan '06"),
		TimeLabel: local.Format("3:04 PM"),
		Day:       local.Format("02"),
		Month:     local.Format("Jan"),
		AllDay:    occ.AllDay,
		Status:    string(occ.Status),

		LocationName: loc.Name,
		LocationURL:  loc.MapURL,
		LocationRaw:  loc.Raw,

		TicketURL: record.TicketURL,
		PageURL:   record.PageURL,
		Banner:    record.Banner,
		Intro:     record.Intro,

		start: occ.StartTime,
	}
	if occ.AllDay {
		entry.TimeLabel = "All day"
	}
	if !occ.EndTime.IsZero() {
		hours := occ.EndTime.Sub(occ.StartTime).Hours()
		if hours < 0 {
			hours = 0
		}
		rounded := math.Round(hours*100) / 100
		entry.DurationHours = &rounded
	}
	return entry
}

// Ascending by start instant; entries without a usable start sort last,
// deterministically, so a bad row can never break the comparison.
func sortEntries(entries []*ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.start.IsZero():
			return false
		case b.start.IsZero():
			return true
		case !a.start.Equal(b.start):
			return a.start.Before(b.start)
		default:
			return a.Slug < b.Slug
		}
	})
}
