package services

import (
	"sort"
	"time"

	"landscape_dispatch/internal/models"
)

// TimelineBucket is one calendar month of assignment activity.
type TimelineBucket struct {
	Month     string `json:"month"` // e.g. "Jan 2025"
	Count     int    `json:"count"`
	Delivered int    `json:"delivered"`
	InTransit int    `json:"in_transit"`
	Assigned  int    `json:"assigned"`
	Cancelled int    `json:"cancelled"`
	Failed    int    `json:"failed"`

	start time.Time
}

// DriverTotals is the per-driver rollup. Name falls back to the snapshot
// recorded at assignment time when the driver row is gone.
type DriverTotals struct {
	DriverID  uint   `json:"driver_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Delivered int    `json:"delivered"`
}

// Report is the aggregated view the dashboards and exports read.
type Report struct {
	Timeline []TimelineBucket                `json:"timeline"`
	ByDriver []DriverTotals                  `json:"by_driver"`
	ByStatus map[models.AssignmentStatus]int `json:"by_status"`
}

// Aggregate is a pure function of its inputs: no clock, no storage, same
// output on every call. Assignments with a zero creation time are left out
// of the timeline but still counted in ByDriver and ByStatus; a bad record
// never blanks the whole report.
func Aggregate(assignments []models.Assignment, f AssignmentFilter) Report {
	report := Report{
		Timeline: []TimelineBucket{},
		ByDriver: []DriverTotals{},
		ByStatus: map[models.AssignmentStatus]int{},
	}

	buckets := map[string]*TimelineBucket{}
	drivers := map[uint]*DriverTotals{}

	for _, a := range assignments {
		if !matches(a, f) {
			continue
		}

		report.ByStatus[a.Status]++

		d, ok := drivers[a.DriverID]
		if !ok {
			name := a.Driver.Name
			if name == "" {
				name = a.DriverName
			}
			d = &DriverTotals{DriverID: a.DriverID, Name: name}
			drivers[a.DriverID] = d
		}
		d.Total++
		if a.Status == models.StatusDelivered {
			d.Delivered++
		}

		if a.CreatedAt.IsZero() {
			continue // no usable date, skip the timeline only
		}
		start := time.Date(a.CreatedAt.Year(), a.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		label := start.Format("Jan 2006")
		b, ok := buckets[label]
		if !ok {
			b = &TimelineBucket{Month: label, start: start}
			buckets[label] = b
		}
		b.Count++
		switch a.Status {
		case models.StatusDelivered:
			b.Delivered++
		case models.StatusInTransit:
			b.InTransit++
		case models.StatusAssigned:
			b.Assigned++
		case models.StatusCancelled:
			b.Cancelled++
		case models.StatusFailed:
			b.Failed++
		}
	}

	for _, b := range buckets {
		report.Timeline = append(report.Timeline, *b)
	}
	sort.Slice(report.Timeline, func(i, j int) bool {
		return report.Timeline[i].start.Before(report.Timeline[j].start)
	})

	for _, d := range drivers {
		report.ByDriver = append(report.ByDriver, *d)
	}
	// Busiest drivers first; stable id order between equals so repeated
	// runs agree.
	sort.Slice(report.ByDriver, func(i, j int) bool {
		if report.ByDriver[i].Total != report.ByDriver[j].Total {
			return report.ByDriver[i].Total > report.ByDriver[j].Total
		}
		return report.ByDriver[i].DriverID < report.ByDriver[j].DriverID
	})

	return report
}

func matches(a models.Assignment, f AssignmentFilter) bool {
	if f.DriverID != nil && a.DriverID != *f.DriverID {
		return false
	}
	if f.VehicleID != nil && a.VehicleID != *f.VehicleID {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.From != nil && a.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && a.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
