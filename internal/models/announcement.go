package models

import "time"

// DefaultAnnouncementTitle is used when the operator submits no title.
const DefaultAnnouncementTitle = "Tanpa Judul"

// Announcement represents a finished audio clip, either synthesized through
// the pipeline or uploaded directly. The backing clip file shares its
// lifecycle; deleting the announcement deletes the file.
type Announcement struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	AudioURL  string    `db:"audio_url" json:"audio_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
