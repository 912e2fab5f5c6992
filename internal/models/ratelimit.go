package models

import "time"

// RateLimitEntry is a fixed-window counter keyed by "action:subject"
// (e.g. "sms_phone:+40712345678"). Count and WindowStart only change
// together, in a single atomic storage operation.
type RateLimitEntry struct {
	Key         string    `bson:"_id" json:"key"`
	Count       int       `bson:"count" json:"count"`
	WindowStart time.Time `bson:"windowStart" json:"windowStart"`
}
