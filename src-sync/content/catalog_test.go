package content_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"schedsync/src-sync/content"
	"schedsync/src-sync/utils"
)

func writeEventFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func loadTestCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	dir := t.TempDir()
	writeEventFile(t, dir, "board-game-night.md", strings.Join([]string{
		"---",
		"title: Board Game Night",
		"tagline: Bring your own dice",
		"hero_image: /img/board-games.jpg",
		"ticket_link: https://tickets.example.com/bgn",
		"---",
		"",
		"Long-form page body.",
	}, "\n"))
	writeEventFile(t, dir, "poetry.md", strings.Join([]string{
		"---",
		"slug: poetry-evening",
		"title: Poetry & Chai Evening",
		"intro: An open mic for everyone",
		"permalink: /special/poetry/",
		"---",
	}, "\n"))
	writeEventFile(t, dir, "broken.md", "no front matter here")
	writeEventFile(t, dir, "untitled.md", "---\nslug: untitled\n---\n")
	writeEventFile(t, dir, "notes.txt", "not markdown")

	warns := utils.NewWarnings()
	catalog := content.LoadCatalog(dir, warns)
	if warns.Count() != 2 {
		t.Fatal("expected warnings for broken.md and untitled.md, got", warns.Items())
	}
	return catalog
}

func TestLoadCatalog(t *testing.T) {
	catalog := loadTestCatalog(t)
	if len(catalog.Records) != 2 {
		t.Fatal("expected 2 records, got", len(catalog.Records))
	}

	record := catalog.Match("Board Game Night")
	if record == nil {
		t.Fatal("title match failed")
	}
	if record.Slug != "board-game-night" {
		t.Error("slug should fall back to the filename:", record.Slug)
	}
	if record.PageURL != "/events/board-game-night/" {
		t.Error("page URL should be derived from the slug:", record.PageURL)
	}
	if record.Intro != "Bring your own dice" {
		t.Error("intro should fall back to the tagline:", record.Intro)
	}
	if record.Banner != "/img/board-games.jpg" {
		t.Error("banner should fall back to hero_image:", record.Banner)
	}
	if record.TicketURL != "https://tickets.example.com/bgn" {
		t.Error("wrong ticket URL:", record.TicketURL)
	}
}

func TestMatchNormalizesSummary(t *testing.T) {
	catalog := loadTestCatalog(t)

	// "&" folds to "and", case and punctuation are ignored
	if record := catalog.Match("poetry AND chai evening!"); record == nil || record.Slug != "poetry-evening" {
		t.Error("normalized title match failed:", record)
	}
	if record := catalog.Match("Poetry Evening"); record == nil || record.Slug != "poetry-evening" {
		t.Error("slug match failed:", record)
	}
	if record := catalog.Match("Completely Unknown Show"); record != nil {
		t.Error("should not have matched:", record)
	}
	if record := catalog.Match("   "); record != nil {
		t.Error("blank summary must not match:", record)
	}
}

func TestMatchExplicitPermalink(t *testing.T) {
	catalog := loadTestCatalog(t)
	record := catalog.Match("Poetry & Chai Evening")
	if record == nil {
		t.Fatal("match failed")
	}
	if record.PageURL != "/special/poetry/" {
		t.Error("explicit permalink should win:", record.PageURL)
	}
	if record.Intro != "An open mic for everyone" {
		t.Error("explicit intro should win:", record.Intro)
	}
}

func TestLoadCatalogMissingDir(t *testing.T) {
	warns := utils.NewWarnings()
	catalog := content.LoadCatalog(filepath.Join(t.TempDir(), "nope"), warns)
	if len(catalog.Records) != 0 {
		t.Error("missing directory should yield an empty catalog")
	}
	if warns.Count() != 1 {
		t.Error("missing directory should warn, got", warns.Items())
	}
}
