package ical

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"schedsync/src-sync/utils"
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusTentative Status = "TENTATIVE"
	StatusCancelled Status = "CANCELLED"
)

// One concrete instance of a (possibly recurring) event, after recurrence
// expansion and override application. Text fields are already decoded.
type Occurrence struct {
	UID         string
	Summary     string
	Description string
	RawLocation string
	Status      Status
	AllDay      bool
	StartTime   time.Time
	EndTime     time.Time // zero when the event has no DTEND
}

// A VEVENT without RECURRENCE-ID: the event itself plus its recurrence set.
type MasterEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Status      Status
	AllDay      bool
	Start       time.Time
	End         time.Time // zero when absent
	Rule        *RecurrenceRule
	RDates      []time.Time
	ExDates     []time.Time
}

// A VEVENT with RECURRENCE-ID: replaces one occurrence of its master.
// Presence flags distinguish "field omitted" from "field empty" so the
// resolver can fall back per field.
type OverrideEvent struct {
	UID          string
	RecurrenceID time.Time

	Start    time.Time
	End      time.Time
	HasStart bool
	AllDay   bool

	Status         Status
	Location       string
	HasLocation    bool
	Description    string
	HasDescription bool
}

// ResolveOccurrences turns tokenized VEVENT blocks into the flat occurrence
// list: expand each master's recurrence, apply EXDATEs and RECURRENCE-ID
// overrides, drop cancellations. Problems with individual events are warned
// about and never abort the run.
func ResolveOccurrences(events []RawEvent, defaultLoc *time.Location, warns *utils.Warnings) []Occurrence {
	overrides := make(map[string]map[string]*OverrideEvent)
	masters := make([]*MasterEvent, 0, len(events))

	for _, raw := range events {
		if raw.Has("RECURRENCE-ID") {
			override := overrideFromRaw(raw, defaultLoc, warns)
			if override == nil {
				continue
			}
			if overrides[override.UID] == nil {
				overrides[override.UID] = make(map[string]*OverrideEvent)
			}
			overrides[override.UID][instantKey(override.RecurrenceID)] = override
			continue
		}
		if master := masterFromRaw(raw, defaultLoc, warns); master != nil {
			masters = append(masters, master)
		}
	}

	occurrences := make([]Occurrence, 0)
	for _, master := range masters {
		if master.Status == StatusCancelled {
			slog.Debug("skipping cancelled master event", "uid", master.UID, "summary", master.Summary)
			continue
		}

		var duration time.Duration
		if !master.End.IsZero() && master.End.After(master.Start) {
			duration = master.End.Sub(master.Start)
		}

		for _, start := range ExpandStarts(master.Start, master.Rule, master.RDates) {
			if excludedByExDate(start, master.ExDates) {
				slog.Debug("occurrence removed by EXDATE", "uid", master.UID, "start", instantKey(start))
				continue
			}

			occ := Occurrence{
				UID:         master.UID,
				Summary:     master.Summary,
				Description: master.Description,
				RawLocation: master.Location,
				Status:      master.Status,
				AllDay:      master.AllDay,
				StartTime:   start,
			}
			if !master.End.IsZero() {
				occ.EndTime = start.Add(duration)
			}
			if occ.Status == "" {
				occ.Status = StatusConfirmed
			}

			if override := overrides[master.UID][instantKey(start)]; override != nil {
				applyOverride(&occ, override)
			}
			if occ.Status == StatusCancelled {
				slog.Debug("occurrence cancelled by override", "uid", master.UID, "start", instantKey(start))
				continue
			}

			occurrences = append(occurrences, occ)
		}
	}
	return occurrences
}

// EXDATE matching tolerates sub-second round-off. It wins over an RDATE at
// the same instant because exclusion runs before anything else.
func excludedByExDate(start time.Time, exDates []time.Time) bool {
	for _, ex := range exDates {
		diff := ex.Sub(start)
		if diff < 0 {
			diff = -diff
		}
		if diff < time.Second {
			return true
		}
	}
	return false
}

func applyOverride(occ *Occurrence, override *OverrideEvent) {
	if override.HasStart {
		occ.StartTime = override.Start
		occ.AllDay = override.AllDay
	}
	if !override.End.IsZero() {
		occ.EndTime = override.End
	}
	if override.Status != "" {
		occ.Status = override.Status
	}
	if override.HasLocation {
		occ.RawLocation = override.Location
	}
	if override.HasDescription {
		occ.Description = override.Description
	}
}

func masterFromRaw(raw RawEvent, defaultLoc *time.Location, warns *utils.Warnings) *MasterEvent {
	master := &MasterEvent{
		UID:         raw.Text("UID"),
		Summary:     raw.Text("SUMMARY"),
		Description: raw.Text("DESCRIPTION"),
		Location:    raw.Text("LOCATION"),
		Status:      statusFromRaw(raw),
	}
	if master.UID == "" {
		// Google's feeds always carry UIDs; fabricate one so the event at
		// least survives, though no override can target it.
		master.UID = uuid.NewString()
	}

	startProp, ok := raw.Get("DTSTART")
	if !ok {
		warns.Warnf("skipping event without DTSTART: %q", master.Summary)
		return nil
	}
	start, isDate, err := ResolveTimestamp(startProp, defaultLoc, warns)
	if err != nil {
		warns.Warnf("skipping event %q: %s", master.Summary, err)
		return nil
	}
	master.Start = start
	master.AllDay = isDate || startProp.Param("VALUE") == "DATE"

	if endProp, ok := raw.Get("DTEND"); ok {
		end, _, err := ResolveTimestamp(endProp, defaultLoc, warns)
		if err != nil {
			warns.Warnf("ignoring unparsable DTEND of %q: %s", master.Summary, err)
		} else {
			master.End = end
		}
	}

	if rruleProp, ok := raw.Get("RRULE"); ok {
		rule, err := ParseRecurrenceRule(rruleProp.Value, defaultLoc, warns)
		if err != nil {
			warns.Warnf("ignoring RRULE of %q: %s", master.Summary, err)
		} else {
			master.Rule = rule
		}
	}
	for _, prop := range raw.All("EXDATE") {
		master.ExDates = append(master.ExDates, resolveTimestampList(prop, defaultLoc, warns)...)
	}
	for _, prop := range raw.All("RDATE") {
		master.RDates = append(master.RDates, resolveTimestampList(prop, defaultLoc, warns)...)
	}

	return master
}

func overrideFromRaw(raw RawEvent, defaultLoc *time.Location, warns *utils.Warnings) *OverrideEvent {
	uid := raw.Text("UID")
	if uid == "" {
		warns.Warnf("skipping RECURRENCE-ID block without UID")
		return nil
	}

	ridProp, _ := raw.Get("RECURRENCE-ID")
	rid, _, err := ResolveTimestamp(ridProp, defaultLoc, warns)
	if err != nil {
		warns.Warnf("skipping override of %q: %s", uid, err)
		return nil
	}

	override := &OverrideEvent{
		UID:          uid,
		RecurrenceID: rid,
		Status:       statusFromRaw(raw),
	}
	if startProp, ok := raw.Get("DTSTART"); ok {
		start, isDate, err := ResolveTimestamp(startProp, defaultLoc, warns)
		if err != nil {
			warns.Warnf("ignoring unparsable DTSTART of override %q: %s", uid, err)
		} else {
			override.Start = start
			override.HasStart = true
			override.AllDay = isDate || startProp.Param("VALUE") == "DATE"
		}
	}
	if endProp, ok := raw.Get("DTEND"); ok {
		end, _, err := ResolveTimestamp(endProp, defaultLoc, warns)
		if err != nil {
			warns.Warnf("ignoring unparsable DTEND of override %q: %s", uid, err)
		} else {
			override.End = end
		}
	}
	if prop, ok := raw.Get("LOCATION"); ok {
		override.Location = DecodeText(prop.Value)
		override.HasLocation = true
	}
	if prop, ok := raw.Get("DESCRIPTION"); ok {
		override.Description = DecodeText(prop.Value)
		override.HasDescription = true
	}
	return override
}

func statusFromRaw(raw RawEvent) Status {
	prop, ok := raw.Get("STATUS")
	if !ok {
		return ""
	}
	return Status(strings.ToUpper(strings.TrimSpace(prop.Value)))
}
