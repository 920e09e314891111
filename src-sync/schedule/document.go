package schedule

import "time"

// One row of the rendered schedule. start_utc is the canonical comparison
// key; start_iso carries the zone-offset display form. The schema is frozen:
// the static site renderer consumes this document as-is.
type ScheduleEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`

	StartISO  string `json:"start_iso"`
	StartUTC  string `json:"start_utc"`
	Timezone  string `json:"timezone"`
	DateLabel string `json:"date_label"`
	TimeLabel string `json:"time_label"`
	Day       string `json:"day"`
	Month     string `json:"month"`
	AllDay    bool   `json:"all_day"`
	Status    string `json:"status"`

	LocationName string `json:"location_name"`
	LocationURL  string `json:"location_url"`
	LocationRaw  string `json:"location_raw"`

	TicketURL string `json:"ticket_url"`
	PageURL   string `json:"page_url"`
	Banner    string `json:"banner"`
	Intro     string `json:"intro"`

	DurationHours *float64 `json:"duration_hours"`

	start time.Time
}

// Everything known about one event series: static metadata plus its
// occurrences. Occurrences (the full history including past runs) is only
// populated when the run is configured to keep it.
type SlugBucket struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Intro     string `json:"intro"`
	Tagline   string `json:"tagline"`
	Banner    string `json:"banner"`
	TicketURL string `json:"ticket_url"`
	PageURL   string `json:"page_url"`

	Upcoming    []*ScheduleEntry `json:"upcoming"`
	Occurrences []*ScheduleEntry `json:"occurrences,omitempty"`
	Next        *ScheduleEntry   `json:"next"`
}

// A catalog record with no upcoming occurrence.
type OtherRecord struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Intro     string `json:"intro"`
	Banner    string `json:"banner"`
	PageURL   string `json:"page_url"`
	TicketURL string `json:"ticket_url"`
}

type Source struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// The single artifact the pipeline produces. Built fresh on every run; a
// pure function of the inputs at a given "now".
type Document struct {
	GeneratedAt    string                 `json:"generated_at"`
	Timezone       string                 `json:"timezone"`
	Source         Source                 `json:"source"`
	Warnings       []string               `json:"warnings"`
	Upcoming       []*ScheduleEntry       `json:"upcoming"`
	ScheduledSlugs []string               `json:"scheduled_slugs"`
	Other          []OtherRecord          `json:"other"`
	BySlug         map[string]*SlugBucket `json:"by_slug"`
}
