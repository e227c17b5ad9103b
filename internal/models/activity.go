package models

import "time"

// ActivityKind is the practice being logged
type ActivityKind string

const (
	ActivityPrayer  ActivityKind = "prayer"
	ActivityFasting ActivityKind = "fasting"
	ActivityQuran   ActivityKind = "quran"
)

// Valid reports whether k is a known activity kind
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityPrayer, ActivityFasting, ActivityQuran:
		return true
	}
	return false
}

// Prayers are the accepted details for prayer activities
var Prayers = []string{"fajr", "dhuhr", "asr", "maghrib", "isha"}

// Activity is one day's entry in a child's practice log
type Activity struct {
	ID         int64        `json:"id"`
	ChildID    int64        `json:"child_id"`
	RecordedBy int64        `json:"recorded_by"`
	Kind       ActivityKind `json:"kind"`
	Day        Date         `json:"day"`
	Detail     string       `json:"detail"`
	Completed  bool         `json:"completed"`
	CreatedAt  time.Time    `json:"created_at"`
}
