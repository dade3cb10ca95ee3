// Package device tracks the coffee machine and carries commands to it.
package device

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	StatusOn  = "ligada"
	StatusOff = "desligada"

	CommandOn  = "ligar"
	CommandOff = "desligar"

	activityLayout = "15:04:05"

	maxTemperature = 95.0
	minWaterLevel  = 20
)

// State is the machine state served on /status.
type State struct {
	Status            string `json:"status"`
	LastActivity      string `json:"last_activity"`
	Temperature       string `json:"temperature"`
	WaterLevel        string `json:"water_level"`
	Pressure          string `json:"pressure"`
	ShotsCount        int    `json:"shots_count"`
	MaintenanceNeeded bool   `json:"maintenance_needed"`
}

// Tracker holds the last known State. It is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.state = State{
		Status:       StatusOff,
		LastActivity: t.now().Format(activityLayout),
		Temperature:  "0",
		WaterLevel:   "100",
		Pressure:     "0",
	}
	return t
}

func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// ApplyStatus merges a status report. JSON objects are merged field by
// field; the bare words "ligada" and "desligada" set the status. Anything
// else only refreshes the activity time.
func (t *Tracker) ApplyStatus(payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.touchLocked()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		word := strings.TrimSpace(string(payload))
		if word == StatusOn || word == StatusOff {
			t.state.Status = word
			return nil
		}
		return fmt.Errorf("unrecognised status payload %q", word)
	}

	for key, raw := range fields {
		switch key {
		case "status":
			t.state.Status = scalar(raw, t.state.Status)
		case "temperature":
			t.state.Temperature = scalar(raw, t.state.Temperature)
		case "water_level":
			t.state.WaterLevel = scalar(raw, t.state.WaterLevel)
		case "pressure":
			t.state.Pressure = scalar(raw, t.state.Pressure)
		case "shots_count":
			if n, err := strconv.Atoi(scalar(raw, "")); err == nil {
				t.state.ShotsCount = n
			}
		case "maintenance_needed":
			var b bool
			if err := json.Unmarshal(raw, &b); err == nil {
				t.state.MaintenanceNeeded = b
			}
		}
	}

	if temp, err := strconv.ParseFloat(t.state.Temperature, 64); err == nil && temp > maxTemperature {
		t.state.MaintenanceNeeded = true
	}
	if level, err := strconv.Atoi(t.state.WaterLevel); err == nil && level < minWaterLevel {
		t.state.MaintenanceNeeded = true
	}
	return nil
}

// ApplyCommand records a command accepted by the machine.
func (t *Tracker) ApplyCommand(command string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch command {
	case CommandOn:
		t.state.Status = StatusOn
	case CommandOff:
		t.state.Status = StatusOff
	}
	t.touchLocked()
}

// Touch stamps the activity time.
func (t *Tracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touchLocked()
}

func (t *Tracker) touchLocked() {
	t.state.LastActivity = t.now().Format(activityLayout)
}

// scalar renders a JSON string or number as text, keeping def otherwise.
func scalar(raw json.RawMessage, def string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return def
}
