package models

import "time"

// RepeatOnce marks a schedule that fires on exactly one calendar date. Any
// other repeat value matches every day at the scheduled time.
const RepeatOnce = "once"

// ScheduleEntry triggers playback of an announcement at a time of day.
// AnnouncementID is a plain reference; ownership only kicks in when the last
// referencing schedule is removed (cascade cleanup).
type ScheduleEntry struct {
	ID             int64     `db:"id" json:"id"`
	AnnouncementID int64     `db:"announcement_id" json:"announcement_id"`
	Time           string    `db:"play_time" json:"time"`
	Date           string    `db:"play_date" json:"date"`
	RepeatType     string    `db:"repeat_type" json:"repeat_type"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Repeats reports whether the entry matches every day rather than one date.
func (s ScheduleEntry) Repeats() bool {
	return s.RepeatType != RepeatOnce
}

// RecitationSchedule is a self-contained schedule entry: it carries its own
// clip reference instead of pointing into the announcement store, so no
// cascade cleanup applies.
type RecitationSchedule struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	AudioURL   string    `db:"audio_url" json:"audio_url"`
	Time       string    `db:"play_time" json:"time"`
	Date       string    `db:"play_date" json:"date"`
	RepeatType string    `db:"repeat_type" json:"repeat_type"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Repeats reports whether the entry matches every day rather than one date.
func (s RecitationSchedule) Repeats() bool {
	return s.RepeatType != RepeatOnce
}

// DueSchedule joins a due schedule entry with its announcement. Announcement
// is nil when the referenced clip was already deleted.
type DueSchedule struct {
	ScheduleEntry
	Announcement *Announcement `json:"announcement,omitempty"`
}

// DueResult is the answer to "what is due right now", evaluated at minute
// granularity. Polling again within the same minute yields the same result.
type DueResult struct {
	CurrentTime   string               `json:"current_time"`
	CurrentDate   string               `json:"current_date"`
	Announcements []DueSchedule        `json:"announcements"`
	Recitations   []RecitationSchedule `json:"recitations"`
}
