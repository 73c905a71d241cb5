package dataset

import (
	"log"

	"edustat/domain/dataset"
)

// CleanReport counts records per group before and after cleaning
type CleanReport struct {
	Before map[dataset.Group]int `json:"before"`
	After  map[dataset.Group]int `json:"after"`
	// MissingPost counts records dropped for a missing post-test score
	MissingPost int `json:"missing_post"`
}

// Dropped returns the total number of records removed
func (r CleanReport) Dropped() int {
	total := 0
	for g, n := range r.Before {
		total += n - r.After[g]
	}
	return total
}

// Clean keeps only records with finite pre and post scores and recomputes
// their improvement. Order is preserved and the input is not modified.
func Clean(records []dataset.StudentRecord) ([]dataset.StudentRecord, CleanReport) {
	report := CleanReport{
		Before: make(map[dataset.Group]int, len(dataset.Groups)),
		After:  make(map[dataset.Group]int, len(dataset.Groups)),
	}
	for _, g := range dataset.Groups {
		report.Before[g] = 0
		report.After[g] = 0
	}

	cleaned := make([]dataset.StudentRecord, 0, len(records))
	for _, r := range records {
		report.Before[r.Group]++
		if !isFinite(r.PostTest) {
			report.MissingPost++
		}
		if !r.Complete() {
			continue
		}
		r.Recompute()
		if !isFinite(r.Improvement) {
			continue
		}
		report.After[r.Group]++
		cleaned = append(cleaned, r)
	}

	log.Printf("[Dataset] Cleaned %d -> %d records (%d missing post-test scores)",
		len(records), len(cleaned), report.MissingPost)
	return cleaned, report
}
