package domain

import "time"

// HistoryLimit is the maximum number of search history entries kept.
const HistoryLimit = 20

// SearchEntry is one recorded lookup. Entries are keyed by CVE id:
// repeat searches update the existing entry instead of appending.
type SearchEntry struct {
	ID          uint      `json:"id"`
	CVEID       string    `json:"cveId"`
	Description string    `json:"description"`
	SearchTime  time.Time `json:"searchTime"`
}
