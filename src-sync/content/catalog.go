package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"schedsync/src-sync/utils"
)

// One locally authored event series, loaded from a markdown file's front
// matter. The catalog is the source of truth for which series are
// publishable.
type EventRecord struct {
	Slug            string
	Title           string
	NormalizedTitle string
	Intro           string
	Tagline         string
	Banner          string
	TicketURL       string
	PageURL         string
	Path            string
}

type Catalog struct {
	Records []*EventRecord

	byTitle map[string]*EventRecord
	bySlug  map[string]*EventRecord
}

type frontMatter struct {
	Slug       string `yaml:"slug"`
	Title      string `yaml:"title"`
	Intro      string `yaml:"intro"`
	Tagline    string `yaml:"tagline"`
	Banner     string `yaml:"banner"`
	HeroImage  string `yaml:"hero_image"`
	TicketLink string `yaml:"ticket_link"`
	Permalink  string `yaml:"permalink"`
}

var frontMatterPattern = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---`)

// LoadCatalog reads every markdown file in the events directory. Files with
// missing or broken front matter are warned about and skipped; a missing
// directory degrades to an empty catalog.
func LoadCatalog(dir string, warns *utils.Warnings) *Catalog {
	catalog := &Catalog{
		Records: make([]*EventRecord, 0),
		byTitle: make(map[string]*EventRecord),
		bySlug:  make(map[string]*EventRecord),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		warns.Warnf("unable to read events directory %s: %s", dir, err)
		return catalog
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		record := recordFromFile(path, warns)
		if record == nil {
			continue
		}
		catalog.Records = append(catalog.Records, record)
		catalog.byTitle[record.NormalizedTitle] = record
		catalog.bySlug[utils.NormalizeName(record.Slug)] = record
	}

	slog.Info("event catalog loaded", "dir", dir, "records", len(catalog.Records))
	return catalog
}

func recordFromFile(path string, warns *utils.Warnings) *EventRecord {
	raw, err := os.ReadFile(path)
	if err != nil {
		warns.Warnf("unable to read %s: %s", path, err)
		return nil
	}

	match := frontMatterPattern.FindSubmatch(raw)
	if match == nil {
		warns.Warnf("file %s missing front matter", filepath.Base(path))
		return nil
	}
	var fm frontMatter
	if err := yaml.Unmarshal(match[1], &fm); err != nil {
		warns.Warnf("could not parse front matter for %s: %s", filepath.Base(path), err)
		return nil
	}

	if strings.TrimSpace(fm.Title) == "" {
		warns.Warnf("file %s has no title", filepath.Base(path))
		return nil
	}

	slug := fm.Slug
	if slug == "" {
		slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	slug = utils.Slugify(slug)

	pageURL := strings.TrimSpace(fm.Permalink)
	if pageURL == "" {
		pageURL = "/events/" + slug + "/"
	}

	record := &EventRecord{
		Slug:      slug,
		Title:     strings.TrimSpace(fm.Title),
		Intro:     fm.Intro,
		Tagline:   fm.Tagline,
		Banner:    fm.Banner,
		TicketURL: fm.TicketLink,
		PageURL:   pageURL,
		Path:      path,
	}
	record.NormalizedTitle = utils.NormalizeName(record.Title)
	if record.Intro == "" {
		record.Intro = fm.Tagline
	}
	if record.Banner == "" {
		record.Banner = fm.HeroImage
	}
	return record
}

// Match joins a calendar SUMMARY to a catalog record: normalized title
// first, then normalized slug, then the slug derived from the summary
// itself. Returns nil when nothing matches.
func (c *Catalog) Match(summary string) *EventRecord {
	normalized := utils.NormalizeName(summary)
	if normalized == "" {
		return nil
	}
	if record, ok := c.byTitle[normalized]; ok {
		return record
	}
	if record, ok := c.bySlug[normalized]; ok {
		return record
	}
	if record, ok := c.bySlug[utils.NormalizeName(utils.Slugify(summary))]; ok {
		return record
	}
	return nil
}
