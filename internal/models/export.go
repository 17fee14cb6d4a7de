package models

import "time"

// ExportVersion is the envelope version written by Export.
const ExportVersion = "1.0"

// Export is the portable backup format: every trip plus when it was taken.
type Export struct {
	Trips      []*Trip   `json:"trips"`
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
}
