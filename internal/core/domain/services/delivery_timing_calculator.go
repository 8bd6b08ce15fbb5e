package services

import (
	"fmt"
	"sort"
	"time"

	"pharmadelivery/internal/core/domain/model/order"
)

// DeliveryTiming is the per-stage breakdown of an order's history.
type DeliveryTiming struct {
	// Stages holds the time spent in each status, keyed by the status that was left.
	Stages map[order.Status]time.Duration
	// StageOrder lists the statuses of Stages in the order they were first reached.
	StageOrder []order.Status
	Total      time.Duration
	// HasData is false when the history has fewer than two entries.
	HasData bool
}

// StageMinutes returns the whole minutes spent in status.
func (t DeliveryTiming) StageMinutes(status order.Status) (int, bool) {
	d, ok := t.Stages[status]
	if !ok {
		return 0, false
	}
	return Minutes(d), true
}

func (t DeliveryTiming) TotalMinutes() int {
	return Minutes(t.Total)
}

// DeliveryTimingCalculator derives stage durations from the status history.
//
// Business rules:
//   - entries are sorted by timestamp first (stable), so out-of-order writes
//     from concurrent actors cannot produce negative stages
//   - when a status repeats, only its first occurrence is timed; duplicates stay
//     in the history but are not counted twice
//   - negative durations clamp to zero
//   - fewer than two entries mean "no timing data", not an error
//
// Example:
//
//	calc := NewDeliveryTimingCalculator()
//	timing := calc.Calculate(o.History().Entries())
//	if timing.HasData {
//	    fmt.Println(FormatDuration(timing.Total))
//	}
type DeliveryTimingCalculator struct{}

func NewDeliveryTimingCalculator() DeliveryTimingCalculator {
	return DeliveryTimingCalculator{}
}

// Calculate never mutates entries.
func (c DeliveryTimingCalculator) Calculate(entries []order.HistoryEntry) DeliveryTiming {
	timing := DeliveryTiming{Stages: map[order.Status]time.Duration{}}
	if len(entries) < 2 {
		return timing
	}

	sorted := make([]order.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp().Before(sorted[j].Timestamp())
	})

	for i := 0; i < len(sorted)-1; i++ {
		status := sorted[i].Status()
		if _, seen := timing.Stages[status]; seen {
			continue
		}
		timing.Stages[status] = clamp(sorted[i+1].Timestamp().Sub(sorted[i].Timestamp()))
		timing.StageOrder = append(timing.StageOrder, status)
	}

	timing.Total = clamp(sorted[len(sorted)-1].Timestamp().Sub(sorted[0].Timestamp()))
	timing.HasData = true
	return timing
}

// Minutes truncates d to whole minutes.
func Minutes(d time.Duration) int {
	return int(d / time.Minute)
}

// FormatDuration renders a duration for display. Sub-minute durations read
// "less than 1 minute" instead of 0.
func FormatDuration(d time.Duration) string {
	minutes := Minutes(d)
	switch {
	case minutes < 1:
		return "less than 1 minute"
	case minutes == 1:
		return "1 minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	default:
		return fmt.Sprintf("%dh %02dmin", minutes/60, minutes%60)
	}
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
