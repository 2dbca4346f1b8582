package models

import (
	"time"
)

// LotteryRecord is one finished draw. The log of records is append-only
// and globally visible, oldest first.
type LotteryRecord struct {
	Title   string    `json:"title"`
	Time    time.Time `json:"time"`
	Winners []string  `json:"winners"`
}
