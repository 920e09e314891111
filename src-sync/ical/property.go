package ical

import (
	"fmt"
	"strings"
)

// Which payload a property line carries. Everything the pipeline doesn't
// understand stays PropOther and is kept verbatim in the RawEvent.
type PropKind int

const (
	PropOther PropKind = iota
	PropUID
	PropSummary
	PropDescription
	PropLocation
	PropStatus
	PropDTStart
	PropDTEnd
	PropRRule
	PropExDate
	PropRDate
	PropRecurrenceID
)

var kindByName = map[string]PropKind{
	"UID":           PropUID,
	"SUMMARY":       PropSummary,
	"DESCRIPTION":   PropDescription,
	"LOCATION":      PropLocation,
	"STATUS":        PropStatus,
	"DTSTART":       PropDTStart,
	"DTEND":         PropDTEnd,
	"RRULE":         PropRRule,
	"EXDATE":        PropExDate,
	"RDATE":         PropRDate,
	"RECURRENCE-ID": PropRecurrenceID,
}

// One unfolded `NAME;PARAM=V:value` line. The value is stored raw; text
// unescaping happens when a consumer asks for it, not here.
type RawProperty struct {
	Name   string
	Value  string
	Params map[string]string
}

func (p RawProperty) Kind() PropKind {
	return kindByName[p.Name]
}

// Get a parameter by its case-insensitive key
func (p RawProperty) Param(key string) string {
	return p.Params[strings.ToUpper(key)]
}

// Split an unfolded content line into a RawProperty. The first colon
// separates name+parameters from the value; parameters are `;`-separated
// KEY=VALUE pairs with uppercased keys.
func parseContentLine(line string) (RawProperty, error) {
	left, value, found := strings.Cut(line, ":")
	if !found {
		return RawProperty{}, fmt.Errorf("parseContentLine: no colon in %q", line)
	}

	parts := strings.Split(left, ";")
	prop := RawProperty{
		Name:   strings.ToUpper(strings.TrimSpace(parts[0])),
		Value:  value,
		Params: make(map[string]string),
	}
	if prop.Name == "" {
		return RawProperty{}, fmt.Errorf("parseContentLine: blank property name in %q", line)
	}
	for _, part := range parts[1:] {
		key, val, found := strings.Cut(part, "=")
		if !found || key == "" {
			continue
		}
		prop.Params[strings.ToUpper(key)] = val
	}
	return prop, nil
}

var textUnescaper = strings.NewReplacer(
	`\n`, "\n",
	`\N`, "\n",
	`\,`, ",",
	`\;`, ";",
	`\\`, `\`,
)

// DecodeText applies iCalendar text unescaping. Consumers of
// SUMMARY/DESCRIPTION/LOCATION call this; the tokenizer never does.
func DecodeText(s string) string {
	return textUnescaper.Replace(s)
}

// One VEVENT block: property name -> every line that carried it, in feed
// order. EXDATE/RDATE legitimately repeat; for singleton properties the
// last line wins.
type RawEvent struct {
	props map[string][]RawProperty
}

func newRawEvent() RawEvent {
	return RawEvent{
		props: make(map[string][]RawProperty),
	}
}

func (e *RawEvent) add(p RawProperty) {
	e.props[p.Name] = append(e.props[p.Name], p)
}

// Get the last occurrence of a singleton property
func (e *RawEvent) Get(name string) (RawProperty, bool) {
	list := e.props[strings.ToUpper(name)]
	if len(list) == 0 {
		return RawProperty{}, false
	}
	return list[len(list)-1], true
}

// Get every occurrence of a repeatable property
func (e *RawEvent) All(name string) []RawProperty {
	return e.props[strings.ToUpper(name)]
}

func (e *RawEvent) Has(name string) bool {
	return len(e.props[strings.ToUpper(name)]) > 0
}

// Get the decoded value of a singleton text property, or "" if absent
func (e *RawEvent) Text(name string) string {
	prop, ok := e.Get(name)
	if !ok {
		return ""
	}
	return DecodeText(prop.Value)
}
