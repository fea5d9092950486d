// Package config loads and validates the watcher's process-wide settings.
//
// The config file may be YAML or JSON; YAML is coerced to JSON so both
// formats share one strict decoder (DisallowUnknownFields).
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Defaults applied while resolving the file into Settings.
const (
	defaultInterval           = 5 * time.Minute
	defaultRetryAttempts      = 2
	defaultBackoffMin         = 2 * time.Second
	defaultBackoffMax         = 4 * time.Second
	defaultMaxRefreshAttempts = 5
	defaultStateFile          = "state.json"
)

// Load reads, decodes and validates the config file at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	jsonBytes, err := toJSONBytes(path, data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return Settings{}, fmt.Errorf("config: decode %q: %w", path, err)
	}

	return Resolve(f)
}

// Resolve validates the raw file contents and fills defaults.
func Resolve(f File) (Settings, error) {
	var s Settings

	if err := requireString("visa.username", f.Visa.Username); err != nil {
		return s, err
	}
	if err := requireString("visa.password", f.Visa.Password); err != nil {
		return s, err
	}
	if err := requireString("visa.country_code", f.Visa.CountryCode); err != nil {
		return s, err
	}
	if err := requireString("visa.schedule_id", f.Visa.ScheduleID); err != nil {
		return s, err
	}
	if f.Visa.FacilityID <= 0 {
		return s, fmt.Errorf("config: visa.facility_id must be a positive integer")
	}
	if err := requireString("telegram.token", f.Telegram.Token); err != nil {
		return s, err
	}

	chatIDs, err := ParseChatIDs(f.Telegram.ChatIDs)
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	adminID, err := parseAdminChatID(f.Telegram.AdminChatID)
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}

	interval, err := durationOrDefault("check.interval", f.Check.Interval, defaultInterval)
	if err != nil {
		return s, err
	}
	backoffMin, err := durationOrDefault("check.backoff_min", f.Check.BackoffMin, defaultBackoffMin)
	if err != nil {
		return s, err
	}
	backoffMax, err := durationOrDefault("check.backoff_max", f.Check.BackoffMax, defaultBackoffMax)
	if err != nil {
		return s, err
	}
	if backoffMax < backoffMin {
		return s, fmt.Errorf("config: check.backoff_max must be >= check.backoff_min")
	}

	retries := f.Check.RetryAttempts
	if retries == 0 {
		retries = defaultRetryAttempts
	}
	if retries < 1 {
		return s, fmt.Errorf("config: check.retry_attempts must be >= 1")
	}

	refreshes := f.Check.MaxRefreshAttempts
	if refreshes == 0 {
		refreshes = defaultMaxRefreshAttempts
	}
	if refreshes < 1 {
		return s, fmt.Errorf("config: check.max_refresh_attempts must be >= 1")
	}

	headless := true
	if f.Check.Headless != nil {
		headless = *f.Check.Headless
	}

	stateFile := strings.TrimSpace(f.StateFile)
	if stateFile == "" {
		stateFile = defaultStateFile
	}

	s = Settings{
		VisaUsername: f.Visa.Username,
		VisaPassword: f.Visa.Password,
		CountryCode:  f.Visa.CountryCode,
		ScheduleID:   f.Visa.ScheduleID,
		FacilityID:   f.Visa.FacilityID,

		TelegramToken: f.Telegram.Token,
		ChatIDs:       chatIDs,
		AdminChatID:   adminID,

		CheckInterval: interval,
		CheckSchedule: strings.TrimSpace(f.Check.Schedule),
		Headless:      headless,

		CheckRetryAttempts: retries,
		BackoffMin:         backoffMin,
		BackoffMax:         backoffMax,

		AppointmentsMaxRefreshAttempts: refreshes,

		StateFile: stateFile,
		Logging:   f.Logging,
	}
	return s, nil
}

func requireString(path, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("config: %s is required", path)
	}
	return nil
}

func durationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q: %w", path, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s: duration must be > 0", path)
	}
	return d, nil
}

// toJSONBytes converts a YAML config to JSON so the strict JSON decoder
// handles both formats.
func toJSONBytes(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	v = stringifyKeys(v)

	j, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// stringifyKeys ensures all map keys are strings so the result can be
// JSON-marshaled.
func stringifyKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringifyKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringifyKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringifyKeys(x[i])
		}
		return x
	default:
		return in
	}
}
