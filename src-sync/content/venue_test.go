package content_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"schedsync/src-sync/content"
	"schedsync/src-sync/utils"
)

func writeVenueFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadTestVenues(t *testing.T) *content.VenueDirectory {
	t.Helper()
	path := writeVenueFile(t, strings.Join([]string{
		"- key: example-hall",
		"  name: Example Hall",
		"  map_url: https://maps.example.com/hall",
		"  aliases:",
		"    - The Hall",
		"- key: corner-cafe",
		"  name: Corner Café",
		"  map_url: https://maps.example.com/cafe",
	}, "\n"))
	warns := utils.NewWarnings()
	dir := content.LoadVenues(path, warns)
	if warns.Count() != 0 {
		t.Fatal("unexpected warnings:", warns.Items())
	}
	return dir
}

func TestResolveWholeString(t *testing.T) {
	dir := loadTestVenues(t)
	got := dir.Resolve("Example Hall", utils.NewWarnings())
	if !got.Matched || got.Name != "Example Hall" || got.MapURL != "https://maps.example.com/hall" {
		t.Errorf("wrong resolution: %+v", got)
	}
}

func TestResolveSegment(t *testing.T) {
	dir := loadTestVenues(t)
	got := dir.Resolve("Example Hall, MG Road, Bangalore", utils.NewWarnings())
	if !got.Matched || got.Name != "Example Hall" {
		t.Errorf("segment match failed: %+v", got)
	}
	if got.Raw != "Example Hall, MG Road, Bangalore" {
		t.Error("raw text should be preserved:", got.Raw)
	}
}

func TestResolveAlias(t *testing.T) {
	dir := loadTestVenues(t)
	got := dir.Resolve("the hall", utils.NewWarnings())
	if !got.Matched || got.Name != "Example Hall" {
		t.Errorf("alias match failed: %+v", got)
	}
}

func TestResolveDiacriticsFolded(t *testing.T) {
	dir := loadTestVenues(t)
	got := dir.Resolve("corner cafe", utils.NewWarnings())
	if !got.Matched || got.Name != "Corner Café" {
		t.Errorf("diacritic-insensitive match failed: %+v", got)
	}
}

func TestResolveSubstring(t *testing.T) {
	dir := loadTestVenues(t)
	got := dir.Resolve("Meet us at Example Hall after lunch", utils.NewWarnings())
	if !got.Matched || got.Name != "Example Hall" {
		t.Errorf("substring match failed: %+v", got)
	}
}

func TestResolveEmptyLocation(t *testing.T) {
	dir := loadTestVenues(t)
	warns := utils.NewWarnings()
	got := dir.Resolve("  \n ", warns)
	if got.Matched || got.Name != "To Be Announced" {
		t.Errorf("empty location should resolve to the placeholder: %+v", got)
	}
	if warns.Count() != 0 {
		t.Error("empty location is not warning-worthy, got", warns.Items())
	}
}

func TestResolveUnmatchedWarns(t *testing.T) {
	dir := loadTestVenues(t)
	warns := utils.NewWarnings()
	got := dir.Resolve("Someone's Backyard", warns)
	if got.Matched {
		t.Error("should not have matched")
	}
	if got.Name != "Someone's Backyard" {
		t.Error("unmatched location keeps its raw text as name:", got.Name)
	}
	if warns.Count() != 1 || !strings.Contains(warns.Items()[0], "Someone's Backyard") {
		t.Error("expected a no-match warning, got", warns.Items())
	}
}

func TestLoadVenuesLegacyMapForm(t *testing.T) {
	path := writeVenueFile(t, strings.Join([]string{
		"example-hall:",
		"  name: Example Hall",
		"  map_url: https://maps.example.com/hall",
	}, "\n"))
	dir := content.LoadVenues(path, utils.NewWarnings())

	got := dir.Resolve("example hall", utils.NewWarnings())
	if !got.Matched || got.Name != "Example Hall" {
		t.Errorf("legacy map form not loaded: %+v", got)
	}
}

func TestLoadVenuesMissingFile(t *testing.T) {
	warns := utils.NewWarnings()
	dir := content.LoadVenues(filepath.Join(t.TempDir(), "nope.yml"), warns)
	if warns.Count() != 1 {
		t.Error("missing file should warn, got", warns.Items())
	}

	warns2 := utils.NewWarnings()
	got := dir.Resolve("Anywhere", warns2)
	if got.Matched {
		t.Error("empty directory can't match anything")
	}
}
