package ical_test

import (
	"strings"
	"testing"
	"time"

	"schedsync/src-sync/ical"
	"schedsync/src-sync/utils"
)

func resolveFeed(t *testing.T, lines []string) ([]ical.Occurrence, *utils.Warnings) {
	t.Helper()
	warns := utils.NewWarnings()
	events := ical.Parse(strings.Join(lines, "\n"), warns)
	return ical.ResolveOccurrences(events, time.UTC, warns), warns
}

func TestResolveSingleEvent(t *testing.T) {
	occs, warns := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:solo@example.com",
		"SUMMARY:Poetry Evening",
		"DESCRIPTION:An open mic\\, all welcome",
		"LOCATION:Example Hall",
		"DTSTART:20240105T130000Z",
		"DTEND:20240105T150000Z",
		"END:VEVENT",
	})
	if len(occs) != 1 {
		t.Fatal("expected 1 occurrence, got", len(occs))
	}
	occ := occs[0]
	if occ.Summary != "Poetry Evening" {
		t.Error("wrong summary:", occ.Summary)
	}
	if occ.Description != "An open mic, all welcome" {
		t.Error("description not decoded:", occ.Description)
	}
	if occ.Status != ical.StatusConfirmed {
		t.Error("missing STATUS should default to CONFIRMED, got", occ.Status)
	}
	if got := occ.EndTime.Sub(occ.StartTime); got != 2*time.Hour {
		t.Error("wrong duration:", got)
	}
	if warns.Count() != 0 {
		t.Error("unexpected warnings:", warns.Items())
	}
}

func TestResolveRecurringCarriesDuration(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:weekly@example.com",
		"SUMMARY:Weekly Standup",
		"DTSTART:20240101T100000Z",
		"DTEND:20240101T103000Z",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"END:VEVENT",
	})
	if len(occs) != 3 {
		t.Fatal("expected 3 occurrences, got", len(occs))
	}
	for i, occ := range occs {
		if got := occ.EndTime.Sub(occ.StartTime); got != 30*time.Minute {
			t.Errorf("occurrence %d: duration %v, want 30m", i, got)
		}
	}
	if want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC); !occs[2].StartTime.Equal(want) {
		t.Error("third start:", occs[2].StartTime)
	}
}

func TestResolveExDateRemovesOccurrence(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:ex@example.com",
		"SUMMARY:Daily Yoga",
		"DTSTART:20240101T070000Z",
		"RRULE:FREQ=DAILY;COUNT=3",
		"EXDATE:20240102T070000Z",
		"END:VEVENT",
	})
	if len(occs) != 2 {
		t.Fatal("expected 2 occurrences after EXDATE, got", len(occs))
	}
	for _, occ := range occs {
		if occ.StartTime.Day() == 2 {
			t.Error("excluded occurrence survived:", occ.StartTime)
		}
	}
}

func TestResolveExDateBeatsRDate(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:clash@example.com",
		"SUMMARY:One-off",
		"DTSTART:20240101T070000Z",
		"RDATE:20240102T070000Z",
		"EXDATE:20240102T070000Z",
		"END:VEVENT",
	})
	if len(occs) != 1 {
		t.Fatal("EXDATE wins over an RDATE at the same instant; got", len(occs), "occurrences")
	}
}

func TestResolveCancelledMasterDropped(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:gone@example.com",
		"SUMMARY:Cancelled Show",
		"STATUS:CANCELLED",
		"DTSTART:20240101T070000Z",
		"RRULE:FREQ=DAILY;COUNT=5",
		"END:VEVENT",
	})
	if len(occs) != 0 {
		t.Error("cancelled master should produce no occurrences, got", len(occs))
	}
}

func TestResolveOverrideReplacesFields(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:series@example.com",
		"SUMMARY:Book Club",
		"LOCATION:Example Hall",
		"DTSTART:20240101T180000Z",
		"DTEND:20240101T190000Z",
		"RRULE:FREQ=WEEKLY;COUNT=2",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:series@example.com",
		"RECURRENCE-ID:20240108T180000Z",
		"DTSTART:20240108T200000Z",
		"LOCATION:Corner Cafe",
		"END:VEVENT",
	})
	if len(occs) != 2 {
		t.Fatal("expected 2 occurrences, got", len(occs))
	}

	var moved *ical.Occurrence
	for i := range occs {
		if occs[i].RawLocation == "Corner Cafe" {
			moved = &occs[i]
		}
	}
	if moved == nil {
		t.Fatal("override location not applied:", occs)
	}
	if want := time.Date(2024, 1, 8, 20, 0, 0, 0, time.UTC); !moved.StartTime.Equal(want) {
		t.Error("override start not applied:", moved.StartTime)
	}
	if moved.Summary != "Book Club" {
		t.Error("fields absent from the override must fall back to the master, got", moved.Summary)
	}
}

func TestResolveOverrideCancelsOccurrence(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:series@example.com",
		"SUMMARY:Book Club",
		"DTSTART:20240101T180000Z",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:series@example.com",
		"RECURRENCE-ID:20240108T180000Z",
		"STATUS:CANCELLED",
		"END:VEVENT",
	})
	if len(occs) != 2 {
		t.Fatal("expected the cancelled slot removed, got", len(occs), "occurrences")
	}
	for _, occ := range occs {
		if occ.StartTime.Day() == 8 {
			t.Error("cancelled occurrence survived:", occ.StartTime)
		}
	}
}

func TestResolveMissingDTStartWarnsAndSkips(t *testing.T) {
	occs, warns := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:broken@example.com",
		"SUMMARY:No Start",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:fine@example.com",
		"SUMMARY:Has Start",
		"DTSTART:20240101T180000Z",
		"END:VEVENT",
	})
	if len(occs) != 1 || occs[0].UID != "fine@example.com" {
		t.Error("only the well-formed event should survive, got", occs)
	}
	if warns.Count() != 1 || !strings.Contains(warns.Items()[0], "No Start") {
		t.Error("expected a DTSTART warning, got", warns.Items())
	}
}

func TestResolveMissingUIDFabricated(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"SUMMARY:Anonymous",
		"DTSTART:20240101T180000Z",
		"END:VEVENT",
	})
	if len(occs) != 1 {
		t.Fatal("expected 1 occurrence, got", len(occs))
	}
	if occs[0].UID == "" {
		t.Error("a UID should be fabricated when the feed omits one")
	}
}

func TestResolveAllDayFlag(t *testing.T) {
	occs, _ := resolveFeed(t, []string{
		"BEGIN:VEVENT",
		"UID:allday@example.com",
		"SUMMARY:Street Fair",
		"DTSTART;VALUE=DATE:20240310",
		"END:VEVENT",
	})
	if len(occs) != 1 {
		t.Fatal("expected 1 occurrence, got", len(occs))
	}
	if !occs[0].AllDay {
		t.Error("bare-date DTSTART should mark the occurrence all-day")
	}
}
