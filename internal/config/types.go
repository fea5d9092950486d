package config

// File mirrors the on-disk config schema (YAML or JSON). All durations are
// Go duration strings (e.g. "2s", "5m"). Unknown keys are rejected so typos
// surface at startup instead of silently falling back to defaults.
type File struct {
	Visa     VisaConfig     `json:"visa"`
	Telegram TelegramConfig `json:"telegram"`
	Check    CheckConfig    `json:"check"`
	Logging  LoggingConfig  `json:"logging"`

	// StateFile is where the last seen slot set is persisted.
	StateFile string `json:"state_file,omitempty"`
}

type VisaConfig struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CountryCode string `json:"country_code"`
	ScheduleID  string `json:"schedule_id"`
	FacilityID  int    `json:"facility_id"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// ChatIDs is a comma separated list of recipient chat ids
	// (e.g. "1, 2, -1003"). Order is preserved, duplicates are dropped.
	ChatIDs string `json:"chat_ids"`

	// AdminChatID is an optional extra recipient for operational status
	// messages and alert duplicates. De-duplicated against ChatIDs.
	AdminChatID string `json:"admin_chat_id,omitempty"`
}

type CheckConfig struct {
	// Interval drives the fixed-interval polling loop.
	Interval string `json:"interval,omitempty"`

	// Schedule is an optional cron expression (standard 5-field form).
	// When set it replaces the interval ticker.
	Schedule string `json:"schedule,omitempty"`

	// Headless is a pointer so "omitted" defaults to true.
	Headless *bool `json:"headless,omitempty"`

	// RetryAttempts is the total number of attempts for one check
	// (login + scrape) before the failure is surfaced. Must be >= 1.
	RetryAttempts int `json:"retry_attempts,omitempty"`

	BackoffMin string `json:"backoff_min,omitempty"`
	BackoffMax string `json:"backoff_max,omitempty"`

	// MaxRefreshAttempts bounds page refresh/rehydration attempts while
	// waiting for the appointments calendar to render. Must be >= 1.
	MaxRefreshAttempts int `json:"max_refresh_attempts,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}
