package models

import "time"

// Feed is a subscribable ICS export of the occurrences of one owner. The
// token is the only credential needed to read it.
type Feed struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
