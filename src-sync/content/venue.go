package content

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"schedsync/src-sync/utils"
)

// Fallback shown when a calendar entry carries no location at all.
const unannouncedVenue = "To Be Announced"

// One venue directory record from locations.yml.
type Venue struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	MapURL  string   `yaml:"map_url"`
	Aliases []string `yaml:"aliases"`
}

// VenueDirectory indexes venues by the normalized form of every name, key
// and alias.
type VenueDirectory struct {
	index map[string]*Venue
	keys  []string // normalized keys, longest first, for the substring pass
}

// What a free-text location resolved to. Matched=false is a warning-level
// condition, never an error: the raw text is carried through as the name.
type ResolvedLocation struct {
	Name    string `json:"name"`
	MapURL  string `json:"map_url"`
	Raw     string `json:"raw"`
	Matched bool   `json:"-"`
}

// LoadVenues reads the venue directory. Both the list form (key/name/
// map_url/aliases) and the legacy map form are accepted. A missing or
// unparsable file degrades to an empty directory with a warning.
func LoadVenues(path string, warns *utils.Warnings) *VenueDirectory {
	dir := &VenueDirectory{
		index: make(map[string]*Venue),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		warns.Warnf("unable to read venue directory %s: %s", path, err)
		return dir
	}

	venues, err := decodeVenues(raw)
	if err != nil {
		warns.Warnf("unable to parse venue directory %s: %s", path, err)
		return dir
	}
	for _, venue := range venues {
		dir.add(venue)
	}

	sort.Slice(dir.keys, func(i, j int) bool {
		if len(dir.keys[i]) != len(dir.keys[j]) {
			return len(dir.keys[i]) > len(dir.keys[j])
		}
		return dir.keys[i] < dir.keys[j]
	})
	slog.Info("venue directory loaded", "path", path, "venues", len(venues), "keys", len(dir.keys))
	return dir
}

func decodeVenues(raw []byte) ([]*Venue, error) {
	var list []*Venue
	if err := yaml.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	// legacy object map: {key: {name: ..., map_url: ...}}
	var byKey map[string]*Venue
	if err := yaml.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("decodeVenues: %w", err)
	}
	list = make([]*Venue, 0, len(byKey))
	for key, venue := range byKey {
		if venue == nil {
			continue
		}
		if venue.Key == "" {
			venue.Key = key
		}
		list = append(list, venue)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

func (d *VenueDirectory) add(venue *Venue) {
	if venue == nil || venue.Name == "" {
		return
	}
	candidates := append([]string{venue.Name, venue.Key}, venue.Aliases...)
	for _, candidate := range candidates {
		normalized := utils.NormalizeName(candidate)
		if normalized == "" {
			continue
		}
		if _, ok := d.index[normalized]; ok {
			continue
		}
		d.index[normalized] = venue
		d.keys = append(d.keys, normalized)
	}
}

// Resolve matches a decoded free-text location against the directory.
// Matching order, first hit wins:
//  1. the whole string, normalized
//  2. each comma/newline-delimited segment, normalized
//  3. a directory key contained in the normalized input
func (d *VenueDirectory) Resolve(rawLocation string, warns *utils.Warnings) ResolvedLocation {
	cleaned := strings.Join(strings.Fields(rawLocation), " ")
	if cleaned == "" {
		return ResolvedLocation{
			Name:    unannouncedVenue,
			Matched: false,
		}
	}

	for _, candidate := range segmentCandidates(rawLocation) {
		if venue, ok := d.index[utils.NormalizeName(candidate)]; ok {
			return ResolvedLocation{
				Name:    venue.Name,
				MapURL:  venue.MapURL,
				Raw:     cleaned,
				Matched: true,
			}
		}
	}

	haystack := utils.NormalizeName(cleaned)
	for _, key := range d.keys {
		if strings.Contains(haystack, key) {
			venue := d.index[key]
			return ResolvedLocation{
				Name:    venue.Name,
				MapURL:  venue.MapURL,
				Raw:     cleaned,
				Matched: true,
			}
		}
	}

	warns.Warnf("no location match for %q", cleaned)
	return ResolvedLocation{
		Name:    cleaned,
		Raw:     cleaned,
		Matched: false,
	}
}

// segmentCandidates yields the whole string first, then each newline- or
// comma-delimited segment ("Venue, Address, City" layers).
func segmentCandidates(raw string) []string {
	candidates := []string{raw}
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' }) {
		for _, segment := range strings.Split(line, ",") {
			segment = strings.TrimSpace(segment)
			if segment != "" {
				candidates = append(candidates, segment)
			}
		}
	}
	return candidates
}
