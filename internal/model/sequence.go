package model

import "time"

// RequestSequence is the counter row backing request identifier allocation.
// A single named row holds the highest suffix issued so far; incrementing it
// is the store's job and happens atomically.
type RequestSequence struct {
	Name      string    `gorm:"primaryKey;size:32"`
	Value     uint64    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BedRequestSequenceName is the counter row used for bed requests.
const BedRequestSequenceName = "bed_request"
