package domain

import "time"

// FeedTrigger tells what produced a catalog export
type FeedTrigger string

const (
	FeedTriggerHTTP FeedTrigger = "http"
	FeedTriggerCLI  FeedTrigger = "cli"
	FeedTriggerCron FeedTrigger = "cron"
)

// FeedExport records one generated YML catalog. The document itself is not
// kept, only its fingerprint.
type FeedExport struct {
	ID        int64       `json:"id" gorm:"primaryKey"`
	AdminID   *int64      `json:"admin_id,omitempty" gorm:"index"`
	Trigger   FeedTrigger `json:"trigger" gorm:"size:16;not null"`
	Offers    int         `json:"offers"`
	Skipped   int         `json:"skipped"`
	Bytes     int         `json:"bytes"`
	SHA256    string      `json:"sha256" gorm:"size:64"`
	FileName  string      `json:"file_name" gorm:"size:128"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
}
