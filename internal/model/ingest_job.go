package model

import "time"

// IngestJob is the payload published to the ingest queue.
type IngestJob struct {
	URLs        []string  `json:"urls"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}
