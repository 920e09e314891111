package ical

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"schedsync/src-sync/utils"
)

var (
	datePattern      = regexp.MustCompile(`^\d{4}\d{2}\d{2}$`)
	localTimePattern = regexp.MustCompile(`^\d{4}\d{2}\d{2}T\d{2}\d{2}\d{2}$`)
	utcTimePattern   = regexp.MustCompile(`^\d{4}\d{2}\d{2}T\d{2}\d{2}\d{2}Z$`)
)

// ResolveTimestamp converts a DTSTART/DTEND-style property into an absolute
// instant. The second return value reports whether the token was a bare
// date (an all-day marker, resolved to local midnight).
//
// Rules:
//   - a trailing "Z" means UTC; any TZID parameter is ignored
//   - otherwise the wall clock is resolved against the TZID zone, falling
//     back to the configured default zone
//   - tokens matching neither grammar fail with MalformedTimestampError
func ResolveTimestamp(prop RawProperty, defaultLoc *time.Location, warns *utils.Warnings) (time.Time, bool, error) {
	return resolveToken(prop.Value, prop.Params, defaultLoc, warns)
}

func resolveToken(value string, params map[string]string, defaultLoc *time.Location, warns *utils.Warnings) (time.Time, bool, error) {
	value = strings.TrimSpace(value)

	switch {
	case utcTimePattern.MatchString(value):
		result, err := time.Parse("20060102T150405Z", value)
		if err != nil {
			return time.Time{}, false, &MalformedTimestampError{Value: value}
		}
		return result, false, nil
	case localTimePattern.MatchString(value):
		loc := lookupZone(params["TZID"], defaultLoc, warns)
		result, err := time.ParseInLocation("20060102T150405", value, loc)
		if err != nil {
			return time.Time{}, false, &MalformedTimestampError{Value: value}
		}
		return result, false, nil
	case datePattern.MatchString(value):
		loc := lookupZone(params["TZID"], defaultLoc, warns)
		result, err := time.ParseInLocation("20060102", value, loc)
		if err != nil {
			return time.Time{}, false, &MalformedTimestampError{Value: value}
		}
		return result, true, nil
	default:
		return time.Time{}, false, &MalformedTimestampError{Value: value}
	}
}

func lookupZone(tzid string, defaultLoc *time.Location, warns *utils.Warnings) *time.Location {
	if tzid == "" {
		return defaultLoc
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		warns.Warnf("unknown timezone %q, using %s", tzid, defaultLoc)
		return defaultLoc
	}
	return loc
}

// resolveTimestampList expands a comma-separated EXDATE/RDATE value into
// instants, sharing the line's parameters. Unparsable tokens are warned
// about and dropped.
func resolveTimestampList(prop RawProperty, defaultLoc *time.Location, warns *utils.Warnings) []time.Time {
	instants := make([]time.Time, 0)
	for _, token := range strings.Split(prop.Value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		instant, _, err := resolveToken(token, prop.Params, defaultLoc, warns)
		if err != nil {
			warns.Warnf("skipping unparsable %s value: %s", prop.Name, err)
			continue
		}
		instants = append(instants, instant)
	}
	slog.Debug("resolved timestamp list", "name", prop.Name, "count", len(instants))
	return instants
}

// instantKey is the equality key for instants: two instants are the same
// occurrence slot iff they render to the same ISO-8601 string.
func instantKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
