package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// JobSchedule controls how often one sweep runs.
type JobSchedule struct {
	Interval time.Duration `yaml:"interval"`
	Jitter   time.Duration `yaml:"jitter"`
	Disabled bool          `yaml:"disabled"`
}

// Schedule maps sweep job names to their schedule.
type Schedule struct {
	Jobs map[string]JobSchedule `yaml:"jobs"`
}

// DefaultSchedule is used for jobs the schedule file does not mention.
func DefaultSchedule() Schedule {
	return Schedule{Jobs: map[string]JobSchedule{
		"stale-authorizations": {Interval: 15 * time.Minute, Jitter: 30 * time.Second},
		"delivery-window":      {Interval: time.Hour, Jitter: time.Minute},
		"rental-ends":          {Interval: time.Hour, Jitter: time.Minute},
		"rental-reminders":     {Interval: time.Hour, Jitter: time.Minute},
	}}
}

// LoadSchedule reads the YAML schedule at path over the defaults. An empty
// path returns the defaults.
//
//	jobs:
//	  stale-authorizations:
//	    interval: 5m
//	    jitter: 10s
//	  rental-reminders:
//	    disabled: true
func LoadSchedule(path string) (Schedule, error) {
	schedule := DefaultSchedule()
	if path == "" {
		return schedule, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schedule, fmt.Errorf("read schedule %s: %w", path, err)
	}
	var file Schedule
	if err := yaml.Unmarshal(data, &file); err != nil {
		return schedule, fmt.Errorf("parse schedule %s: %w", path, err)
	}
	for name, js := range file.Jobs {
		if _, ok := schedule.Jobs[name]; !ok {
			return schedule, fmt.Errorf("schedule %s: unknown job %q", path, name)
		}
		current := schedule.Jobs[name]
		if js.Interval > 0 {
			current.Interval = js.Interval
		}
		if js.Jitter > 0 {
			current.Jitter = js.Jitter
		}
		current.Disabled = js.Disabled
		schedule.Jobs[name] = current
	}
	return schedule, nil
}
