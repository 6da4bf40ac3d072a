package index

import "time"

// Stats are aggregate index counters. They accumulate monotonically
// across calls over the life of one Indexer instance and can be
// queried at any time, including mid-run.
type Stats struct {
	TotalFiles      int            `json:"total_files"`
	TotalChunks     int            `json:"total_chunks"`
	TotalCharacters int            `json:"total_characters"`
	Languages       map[string]int `json:"languages"`
	LastDuration    time.Duration  `json:"last_duration"`
	LastUpdated     time.Time      `json:"last_updated"`
}
