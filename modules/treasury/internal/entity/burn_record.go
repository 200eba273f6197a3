package entity

import (
	"time"
)

// BurnRecord marks a confirmed burn for one fiscal quarter. The burn gate
// checks it before firing so a re-run within the same quarter cannot
// double-burn.
type BurnRecord struct {
	Year        int
	Quarter     int
	Amount      uint64
	TxSignature string
	BurnedAt    time.Time
}
