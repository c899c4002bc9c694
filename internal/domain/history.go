package domain

import "encoding/json"

// TrafficSplit is an up/down pair of byte counts. A nil field was not
// reported by the API for that day.
type TrafficSplit struct {
	Down *int64 `json:"down,omitempty"`
	Up   *int64 `json:"up,omitempty"`
}

func (s *TrafficSplit) UpOrZero() int64 {
	if s == nil || s.Up == nil {
		return 0
	}
	return *s.Up
}

func (s *TrafficSplit) DownOrZero() int64 {
	if s == nil || s.Down == nil {
		return 0
	}
	return *s.Down
}

// HistoryDay is the usage breakdown of one calendar day.
type HistoryDay struct {
	Date      string        `json:"-"`
	Metered   *TrafficSplit `json:"metered,omitempty"`
	Total     *int64        `json:"total,omitempty"`
	Unmetered *TrafficSplit `json:"unmetered,omitempty"`
}

func (d HistoryDay) TotalOrZero() int64 {
	if d.Total == nil {
		return 0
	}
	return *d.Total
}

// History keeps days in the order the API returned them.
type History []HistoryDay

// MarshalJSON encodes the history as an object keyed by date.
func (h History) MarshalJSON() ([]byte, error) {
	byDate := make(map[string]HistoryDay, len(h))
	for _, day := range h {
		byDate[day.Date] = day
	}
	return json.Marshal(byDate)
}

// First returns at most n leading days.
func (h History) First(n int) History {
	if n < 0 || n >= len(h) {
		return h
	}
	return h[:n]
}

func Int64(v int64) *int64 {
	return &v
}
