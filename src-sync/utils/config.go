package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	icsURL  string
	icsFile string

	outputPath    string
	eventsDir     string
	locationsFile string

	timezoneName string
	location     *time.Location

	includeAllDay       bool
	keepPastOccurrences bool

	dbPath         string
	pushgatewayURL string

	discordWebhookID    string
	discordWebhookToken string
}

func NewConfig() *Config {
	return &Config{
		icsURL: func() string {
			icsURL := os.Getenv("CALENDAR_ICS_URL")
			if icsURL == "" {
				slog.Warn("CALENDAR_ICS_URL is not set, expecting -ics or -ics-url")
			}
			slog.Debug("env", "CALENDAR_ICS_URL", icsURL)
			return icsURL
		}(),
		icsFile: func() string {
			icsFile := os.Getenv("CALENDAR_ICS_FILE")
			slog.Debug("env", "CALENDAR_ICS_FILE", icsFile)
			return icsFile
		}(),

		outputPath: func() string {
			outputPath := os.Getenv("SYNC_OUTPUT")
			if outputPath == "" {
				outputPath = "_data/event_schedule.json"
			}
			slog.Debug("env", "SYNC_OUTPUT", outputPath)
			return outputPath
		}(),
		eventsDir: func() string {
			eventsDir := os.Getenv("EVENTS_DIR")
			if eventsDir == "" {
				eventsDir = "_events"
			}
			slog.Debug("env", "EVENTS_DIR", eventsDir)
			return eventsDir
		}(),
		locationsFile: func() string {
			locationsFile := os.Getenv("LOCATIONS_FILE")
			if locationsFile == "" {
				locationsFile = "_data/locations.yml"
			}
			slog.Debug("env", "LOCATIONS_FILE", locationsFile)
			return locationsFile
		}(),

		timezoneName: func() string {
			timezoneStr := os.Getenv("SYNC_TIMEZONE")
			if timezoneStr == "" {
				slog.Warn("SYNC_TIMEZONE is not set, using Asia/Kolkata")
				timezoneStr = "Asia/Kolkata"
			}
			return timezoneStr
		}(),
		location: func() *time.Location {
			timezoneStr := os.Getenv("SYNC_TIMEZONE")
			if timezoneStr == "" {
				timezoneStr = "Asia/Kolkata"
			}
			loc, err := time.LoadLocation(timezoneStr)
			if err != nil {
				slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SYNC_TIMEZONE", timezoneStr)
			return loc
		}(),

		includeAllDay: func() bool {
			raw := os.Getenv("INCLUDE_ALL_DAY")
			if raw == "" {
				return true
			}
			includeAllDay, err := strconv.ParseBool(raw)
			if err != nil {
				slog.Warn("invalid INCLUDE_ALL_DAY, using true", "value", raw)
				return true
			}
			slog.Debug("env", "INCLUDE_ALL_DAY", includeAllDay)
			return includeAllDay
		}(),
		keepPastOccurrences: func() bool {
			raw := os.Getenv("KEEP_PAST_OCCURRENCES")
			if raw == "" {
				return true
			}
			keepPast, err := strconv.ParseBool(raw)
			if err != nil {
				slog.Warn("invalid KEEP_PAST_OCCURRENCES, using true", "value", raw)
				return true
			}
			slog.Debug("env", "KEEP_PAST_OCCURRENCES", keepPast)
			return keepPast
		}(),

		dbPath: func() string {
			dbPath := os.Getenv("SYNC_DB")
			slog.Debug("env", "SYNC_DB", dbPath)
			return dbPath
		}(),
		pushgatewayURL: func() string {
			pushgatewayURL := os.Getenv("PUSHGATEWAY_URL")
			slog.Debug("env", "PUSHGATEWAY_URL", pushgatewayURL)
			return pushgatewayURL
		}(),

		discordWebhookID: func() string {
			discordWebhookID := os.Getenv("DISCORD_WEBHOOK_ID")
			slog.Debug("env", "DISCORD_WEBHOOK_ID", discordWebhookID)
			return discordWebhookID
		}(),
		discordWebhookToken: func() string {
			return os.Getenv("DISCORD_WEBHOOK_TOKEN")
		}(),
	}
}

// #region Getters

func (c *Config) GetICSURL() string {
	return c.icsURL
}

func (c *Config) GetICSFile() string {
	return c.icsFile
}

func (c *Config) GetOutputPath() string {
	return c.outputPath
}

func (c *Config) GetEventsDir() string {
	return c.eventsDir
}

func (c *Config) GetLocationsFile() string {
	return c.locationsFile
}

func (c *Config) GetTimezoneName() string {
	return c.timezoneName
}

func (c *Config) GetLocation() *time.Location {
	return c.location
}

func (c *Config) GetIncludeAllDay() bool {
	return c.includeAllDay
}

func (c *Config) GetKeepPastOccurrences() bool {
	return c.keepPastOccurrences
}

func (c *Config) GetDBPath() string {
	return c.dbPath
}

func (c *Config) GetPushgatewayURL() string {
	return c.pushgatewayURL
}

func (c *Config) GetDiscordWebhookID() string {
	return c.discordWebhookID
}

func (c *Config) GetDiscordWebhookToken() string {
	return c.discordWebhookToken
}

// #endregion

// #region Setters (CLI flag overrides)

func (c *Config) SetICSURL(icsURL string) {
	c.icsURL = icsURL
}

func (c *Config) SetICSFile(icsFile string) {
	c.icsFile = icsFile
}

func (c *Config) SetOutputPath(outputPath string) {
	c.outputPath = outputPath
}

// #endregion
