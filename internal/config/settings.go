package config

import "time"

// Settings is the resolved, validated, process-wide configuration.
// Constructed once at startup and treated as read-only everywhere after.
type Settings struct {
	VisaUsername string
	VisaPassword string
	CountryCode  string
	ScheduleID   string
	FacilityID   int

	TelegramToken string
	ChatIDs       []int64
	// AdminChatID is 0 when no admin channel is configured ("0" is rejected
	// as a recipient id at parse time, so the zero value is unambiguous).
	AdminChatID int64

	CheckInterval time.Duration
	CheckSchedule string
	Headless      bool

	CheckRetryAttempts int
	BackoffMin         time.Duration
	BackoffMax         time.Duration

	AppointmentsMaxRefreshAttempts int

	StateFile string

	Logging LoggingConfig
}

// AdminConfigured reports whether an admin channel exists.
func (s Settings) AdminConfigured() bool { return s.AdminChatID != 0 }

// AdminInRecipients reports whether the admin id is already part of the
// general recipient list (in which case alert duplicates are suppressed).
func (s Settings) AdminInRecipients() bool {
	for _, id := range s.ChatIDs {
		if id == s.AdminChatID {
			return true
		}
	}
	return false
}
