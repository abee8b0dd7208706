/*
Package factory provides JSON to Go work-policy conversion.

PURPOSE:
  Converts a JSON work policy into the rule structs the engine packages
  take (attendance.Thresholds, leave.Rules). Unset fields keep the engine
  defaults, so an empty document is the standard policy.

JSON SCHEMA:
  {
    "name": "Standard",
    "min_normal": "8h15m",
    "max_normal": "8h30m",
    "half_day_hours": "4",
    "fallback_hours_per_day": "8.25",
    "extra_time_marker": "[Extra Time Leave]"
  }

  Durations use Go duration syntax. Hour figures are decimals.

NOTE:
  Some call sites historically used an 8h20m upper bound. That is not a
  second valid policy; it is only reachable by writing it here explicitly.

USAGE:
  policy, err := factory.ParseWorkPolicy(data)
  facts := attendance.ClassifyWith(record, policy.Thresholds)

SEE ALSO:
  - attendance/attendance.go: Thresholds
  - leave/leave.go: Rules
  - config: WORK_POLICY_FILE
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/leave"
)

// ErrInvalidPolicy is returned for a work policy the engine cannot use.
var ErrInvalidPolicy = errors.New("invalid work policy")

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// WorkPolicyJSON is the JSON representation of a work policy.
type WorkPolicyJSON struct {
	Name                string           `json:"name,omitempty"`
	MinNormal           string           `json:"min_normal,omitempty"`
	MaxNormal           string           `json:"max_normal,omitempty"`
	HalfDayHours        *decimal.Decimal `json:"half_day_hours,omitempty"`
	FallbackHoursPerDay *decimal.Decimal `json:"fallback_hours_per_day,omitempty"`
	ExtraTimeMarker     string           `json:"extra_time_marker,omitempty"`
}

// WorkPolicy is the parsed, engine-ready policy.
type WorkPolicy struct {
	Name       string
	Thresholds attendance.Thresholds
	Rules      leave.Rules
}

// DefaultWorkPolicy returns the engine defaults.
func DefaultWorkPolicy() WorkPolicy {
	return WorkPolicy{
		Name:       "Standard",
		Thresholds: attendance.DefaultThresholds(),
		Rules:      leave.DefaultRules(),
	}
}

// =============================================================================
// PARSING
// =============================================================================

// ParseWorkPolicy parses a JSON document into a WorkPolicy.
func ParseWorkPolicy(data []byte) (WorkPolicy, error) {
	var pj WorkPolicyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return WorkPolicy{}, fmt.Errorf("failed to parse work policy JSON: %w", err)
	}
	return FromJSON(pj)
}

// LoadWorkPolicy reads a policy file. An empty path returns the defaults.
func LoadWorkPolicy(path string) (WorkPolicy, error) {
	if path == "" {
		return DefaultWorkPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkPolicy{}, fmt.Errorf("failed to read work policy: %w", err)
	}
	return ParseWorkPolicy(data)
}

// FromJSON converts WorkPolicyJSON to a WorkPolicy.
func FromJSON(pj WorkPolicyJSON) (WorkPolicy, error) {
	p := DefaultWorkPolicy()
	if pj.Name != "" {
		p.Name = pj.Name
	}

	var err error
	if p.Thresholds.MinNormal, err = parseSeconds("min_normal", pj.MinNormal, p.Thresholds.MinNormal); err != nil {
		return WorkPolicy{}, err
	}
	if p.Thresholds.MaxNormal, err = parseSeconds("max_normal", pj.MaxNormal, p.Thresholds.MaxNormal); err != nil {
		return WorkPolicy{}, err
	}
	if p.Thresholds.MinNormal > p.Thresholds.MaxNormal {
		return WorkPolicy{}, fmt.Errorf("%w: min_normal exceeds max_normal", ErrInvalidPolicy)
	}

	if pj.HalfDayHours != nil {
		if !pj.HalfDayHours.IsPositive() {
			return WorkPolicy{}, fmt.Errorf("%w: half_day_hours must be positive", ErrInvalidPolicy)
		}
		p.Rules.HalfDaySeconds = leave.HoursToSeconds(*pj.HalfDayHours)
	}
	if pj.FallbackHoursPerDay != nil {
		if !pj.FallbackHoursPerDay.IsPositive() {
			return WorkPolicy{}, fmt.Errorf("%w: fallback_hours_per_day must be positive", ErrInvalidPolicy)
		}
		p.Rules.FallbackSecondsPerDay = leave.HoursToSeconds(*pj.FallbackHoursPerDay)
	}
	if pj.ExtraTimeMarker != "" {
		p.Rules.ExtraTimeMarker = pj.ExtraTimeMarker
	}

	return p, nil
}

// ToJSON converts a WorkPolicy back to its JSON form.
func ToJSON(p WorkPolicy) WorkPolicyJSON {
	half := leave.SecondsToHours(p.Rules.HalfDaySeconds)
	fallback := leave.SecondsToHours(p.Rules.FallbackSecondsPerDay)
	return WorkPolicyJSON{
		Name:                p.Name,
		MinNormal:           (time.Duration(p.Thresholds.MinNormal) * time.Second).String(),
		MaxNormal:           (time.Duration(p.Thresholds.MaxNormal) * time.Second).String(),
		HalfDayHours:        &half,
		FallbackHoursPerDay: &fallback,
		ExtraTimeMarker:     p.Rules.ExtraTimeMarker,
	}
}

func parseSeconds(field, s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidPolicy, field, s)
	}
	return int64(d / time.Second), nil
}
