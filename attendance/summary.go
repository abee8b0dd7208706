package attendance

import "github.com/warp/payroll-engine/calendar"

// Summary aggregates classified days over a reporting period.
type Summary struct {
	Days             []DayFacts             `json:"days"`
	Counts           map[Classification]int `json:"counts"`
	NetWorkedSeconds int64                  `json:"net_worked_seconds"`
	LowTimeSeconds   int64                  `json:"low_time_seconds"`
	ExtraTimeSeconds int64                  `json:"extra_time_seconds"`
}

// Summarize classifies every record of userID dated inside period. An empty
// userID matches all records.
func Summarize(records []Record, userID string, period calendar.Period, th Thresholds) Summary {
	s := Summary{Counts: make(map[Classification]int)}
	for _, r := range records {
		if userID != "" && r.UserID != userID {
			continue
		}
		if !period.Contains(r.Date) {
			continue
		}
		facts := ClassifyWith(r, th)
		s.Days = append(s.Days, facts)
		s.Counts[facts.Classification]++
		s.NetWorkedSeconds += facts.NetWorkedSeconds
		s.LowTimeSeconds += facts.LowSeconds
		s.ExtraTimeSeconds += facts.ExtraSeconds
	}
	return s
}

// PresentDays counts days with a check-in.
func (s Summary) PresentDays() int {
	return len(s.Days) - s.Counts[Absent]
}
