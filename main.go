package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"schedsync/src-sync/content"
	"schedsync/src-sync/ical"
	"schedsync/src-sync/metric"
	"schedsync/src-sync/model"
	"schedsync/src-sync/notify"
	"schedsync/src-sync/schedule"
	"schedsync/src-sync/utils"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(logHandler(slog.LevelDebug)))
}

func logHandler(level slog.Level) slog.Handler {
	return tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC1123Z,
	})
}

func main() {
	icsFileFlag := flag.String("ics", "", "read the ICS feed from a local file instead of fetching")
	icsURLFlag := flag.String("ics-url", "", "override the ICS feed URL")
	outputFlag := flag.String("output", "", "override the output path")
	nowFlag := flag.String("now", "", "pretend the run happens at this time (RFC3339 or natural language)")
	quietFlag := flag.Bool("quiet", false, "only log warnings and errors")
	flag.Parse()

	if *quietFlag {
		slog.SetDefault(slog.New(logHandler(slog.LevelWarn)))
	}

	conf := utils.NewConfig()
	if *icsFileFlag != "" {
		conf.SetICSFile(*icsFileFlag)
	}
	if *icsURLFlag != "" {
		conf.SetICSURL(*icsURLFlag)
	}
	if *outputFlag != "" {
		conf.SetOutputPath(*outputFlag)
	}

	now := time.Now()
	if *nowFlag != "" {
		parsedNow, err := parseNowFlag(*nowFlag, now)
		if err != nil {
			slog.Error("can't parse -now", "value", *nowFlag, "error", err)
			os.Exit(1)
		}
		now = parsedNow
		slog.Info("running with overridden now", "now", now)
	}

	startedAt := time.Now()
	warns := utils.NewWarnings()

	// read phase: feed, venue directory, event catalog
	var body []byte
	switch {
	case conf.GetICSFile() != "":
		fileBody, cErr := ical.ReadIcalFile(conf.GetICSFile())
		if cErr != nil {
			slog.Error("can't read ICS feed", "error", cErr)
			os.Exit(1)
		}
		slog.Info("loaded ICS feed", "path", conf.GetICSFile(), "bytes", len(fileBody))
		body = fileBody
	case conf.GetICSURL() != "":
		urlBody, cErr := ical.FetchIcalUrl(conf.GetICSURL())
		if cErr != nil {
			slog.Error("can't fetch ICS feed", "error", cErr)
			os.Exit(1)
		}
		slog.Info("fetched ICS feed", "url", conf.GetICSURL(), "bytes", len(urlBody))
		body = urlBody
	default:
		slog.Error("no ICS source configured, set CALENDAR_ICS_URL or pass -ics/-ics-url")
		os.Exit(1)
	}

	venues := content.LoadVenues(conf.GetLocationsFile(), warns)
	catalog := content.LoadCatalog(conf.GetEventsDir(), warns)

	// compute phase
	events := ical.Parse(string(body), warns)
	if len(events) == 0 {
		warns.Warnf("no events were parsed from the ICS feed")
	}
	occurrences := ical.ResolveOccurrences(events, conf.GetLocation(), warns)

	doc := schedule.Build(occurrences, catalog, venues, warns, schedule.Options{
		Now:                 now,
		Location:            conf.GetLocation(),
		TimezoneName:        conf.GetTimezoneName(),
		SourceURL:           conf.GetICSURL(),
		IncludeAllDay:       conf.GetIncludeAllDay(),
		KeepPastOccurrences: conf.GetKeepPastOccurrences(),
	})

	// write phase
	if err := writeDocument(conf.GetOutputPath(), doc); err != nil {
		slog.Error("can't write schedule", "path", conf.GetOutputPath(), "error", err)
		os.Exit(1)
	}
	slog.Info("schedule written",
		"path", conf.GetOutputPath(),
		"events", len(events),
		"occurrences", len(occurrences),
		"upcoming", len(doc.Upcoming),
		"warnings", warns.Count(),
	)

	// bookkeeping; never affects the document or the exit code
	recordRun(conf, body, startedAt, len(events), len(occurrences), len(doc.Upcoming), warns.Count())
	if gatewayURL := conf.GetPushgatewayURL(); gatewayURL != "" {
		if err := metric.Push(gatewayURL, metric.RunStats{
			Duration:    time.Since(startedAt),
			Events:      len(events),
			Occurrences: len(occurrences),
			Upcoming:    len(doc.Upcoming),
			Warnings:    warns.Count(),
		}); err != nil {
			slog.Warn("can't push metrics", "error", err)
		}
	}
	if conf.GetDiscordWebhookID() != "" && conf.GetDiscordWebhookToken() != "" {
		if err := notify.SendRunSummary(
			conf.GetDiscordWebhookID(),
			conf.GetDiscordWebhookToken(),
			len(doc.Upcoming),
			warns.Items(),
		); err != nil {
			slog.Warn("can't send run summary", "error", err)
		}
	}
}

func parseNowFlag(value string, base time.Time) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	result, err := w.Parse(value, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parseNowFlag: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("parseNowFlag: no date found in %q", value)
	}
	return result.Time, nil
}

func writeDocument(path string, doc *schedule.Document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("writeDocument: %w", err)
	}
	payload = append(payload, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("writeDocument: %w", err)
		}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("writeDocument: %w", err)
	}
	return nil
}

// recordRun appends the run to the sqlite sync history when SYNC_DB is set.
func recordRun(conf *utils.Config, body []byte, startedAt time.Time, events, occurrences, upcoming, warnings int) {
	dbPath := conf.GetDBPath()
	if dbPath == "" {
		return
	}

	rawDB, err := sql.Open(sqliteshim.ShimName, dbPath+"?mode=rwc")
	if err != nil {
		slog.Warn("can't open sync history database", "path", dbPath, "error", err)
		return
	}
	defer rawDB.Close()

	bunDB := bun.NewDB(rawDB, sqlitedialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(bunDB); err != nil {
		slog.Warn("can't create sync history schema", "error", err)
		return
	}

	run := model.SyncRun{
		ID:              uuid.NewString(),
		StartedAt:       startedAt.Unix(),
		DurationMs:      time.Since(startedAt).Milliseconds(),
		FeedURL:         conf.GetICSURL(),
		FeedHash:        utils.FeedHash(body),
		EventCount:      events,
		OccurrenceCount: occurrences,
		UpcomingCount:   upcoming,
		WarningCount:    warnings,
		OutputPath:      conf.GetOutputPath(),
	}
	if err := run.Insert(context.Background(), bunDB); err != nil {
		slog.Warn("can't record sync run", "error", err)
		return
	}
	slog.Debug("sync run recorded", "id", run.ID, "db", dbPath)
}
