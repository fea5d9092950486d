package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseChatIDs(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int64
		wantErr bool
	}{
		{name: "messy list dedupes and keeps order", in: "1, 2,2,, -1003, 1", want: []int64{1, 2, -1003}},
		{name: "single id", in: "42", want: []int64{42}},
		{name: "negative group id", in: "-100123", want: []int64{-100123}},
		{name: "blanks and commas only", in: " , ,,  ", wantErr: true},
		{name: "empty string", in: "", wantErr: true},
		{name: "non-integer token", in: "1, abc", wantErr: true},
		{name: "zero is not a valid id", in: "0", wantErr: true},
		{name: "zero hidden in list", in: "1,0,2", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseChatIDs(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("position %d: got %d, want %d", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func validFile() File {
	return File{
		Visa: VisaConfig{
			Username:    "user@example.com",
			Password:    "secret",
			CountryCode: "ru-kz",
			ScheduleID:  "12345678",
			FacilityID:  123,
		},
		Telegram: TelegramConfig{
			Token:   "token",
			ChatIDs: "1,2",
		},
	}
}

func TestResolveDefaults(t *testing.T) {
	s, err := Resolve(validFile())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.CheckInterval != 5*time.Minute {
		t.Fatalf("default interval: got %v", s.CheckInterval)
	}
	if s.CheckRetryAttempts != 2 {
		t.Fatalf("default retry attempts: got %d", s.CheckRetryAttempts)
	}
	if s.BackoffMin != 2*time.Second || s.BackoffMax != 4*time.Second {
		t.Fatalf("default backoff: got %v/%v", s.BackoffMin, s.BackoffMax)
	}
	if s.AppointmentsMaxRefreshAttempts != 5 {
		t.Fatalf("default refresh attempts: got %d", s.AppointmentsMaxRefreshAttempts)
	}
	if !s.Headless {
		t.Fatalf("headless should default to true")
	}
	if s.StateFile != "state.json" {
		t.Fatalf("default state file: got %q", s.StateFile)
	}
	if s.AdminConfigured() {
		t.Fatalf("no admin configured, got id %d", s.AdminChatID)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*File)
	}{
		{"missing username", func(f *File) { f.Visa.Username = "" }},
		{"missing password", func(f *File) { f.Visa.Password = " " }},
		{"missing country code", func(f *File) { f.Visa.CountryCode = "" }},
		{"missing schedule id", func(f *File) { f.Visa.ScheduleID = "" }},
		{"bad facility id", func(f *File) { f.Visa.FacilityID = 0 }},
		{"missing token", func(f *File) { f.Telegram.Token = "" }},
		{"no recipients", func(f *File) { f.Telegram.ChatIDs = " , " }},
		{"bad admin id", func(f *File) { f.Telegram.AdminChatID = "zero" }},
		{"zero admin id", func(f *File) { f.Telegram.AdminChatID = "0" }},
		{"negative retry attempts", func(f *File) { f.Check.RetryAttempts = -1 }},
		{"negative refresh attempts", func(f *File) { f.Check.MaxRefreshAttempts = -2 }},
		{"bad interval", func(f *File) { f.Check.Interval = "soon" }},
		{"backoff max below min", func(f *File) { f.Check.BackoffMin = "5s"; f.Check.BackoffMax = "1s" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validFile()
			tc.mutate(&f)
			if _, err := Resolve(f); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAdminInRecipients(t *testing.T) {
	f := validFile()
	f.Telegram.AdminChatID = "2"
	s, err := Resolve(f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !s.AdminConfigured() || !s.AdminInRecipients() {
		t.Fatalf("admin 2 should be configured and in recipients")
	}

	f.Telegram.AdminChatID = "99"
	s, err = Resolve(f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !s.AdminConfigured() || s.AdminInRecipients() {
		t.Fatalf("admin 99 should be configured and not in recipients")
	}
}

func TestLoadYAML(t *testing.T) {
	raw := `
visa:
  username: user@example.com
  password: secret
  country_code: ru-kz
  schedule_id: "12345678"
  facility_id: 123
telegram:
  token: tok
  chat_ids: "1, 2, -1003"
  admin_chat_id: "-1003"
check:
  interval: 10m
  headless: false
  retry_attempts: 3
state_file: ./data/state.json
logging:
  level: debug
  console: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CheckInterval != 10*time.Minute {
		t.Fatalf("interval: got %v", s.CheckInterval)
	}
	if s.Headless {
		t.Fatalf("headless should be false")
	}
	if s.CheckRetryAttempts != 3 {
		t.Fatalf("retry attempts: got %d", s.CheckRetryAttempts)
	}
	if len(s.ChatIDs) != 3 || s.ChatIDs[2] != -1003 {
		t.Fatalf("chat ids: got %v", s.ChatIDs)
	}
	if s.AdminChatID != -1003 || !s.AdminInRecipients() {
		t.Fatalf("admin: got %d", s.AdminChatID)
	}
	if s.StateFile != "./data/state.json" {
		t.Fatalf("state file: got %q", s.StateFile)
	}
	if s.Logging.Level != "debug" {
		t.Fatalf("logging level: got %q", s.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	raw := `
visa:
  username: u
  password: p
  country_code: ru-kz
  schedule_id: "1"
  facility_id: 1
  typo_field: true
telegram:
  token: tok
  chat_ids: "1"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown-key error")
	}
}
