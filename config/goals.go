package config

import (
	"os"
	"sync"
	"time"
)

// GoalFile serves the goal thresholds from a config file, reloading it
// whenever its modification time changes. A file that is missing or fails
// to load leaves the last good goals in place.
type GoalFile struct {
	path string

	mu    sync.Mutex
	mod   time.Time
	goals GoalsConfig
}

// NewGoalFile starts from initial and watches path.
func NewGoalFile(path string, initial GoalsConfig) *GoalFile {
	g := &GoalFile{path: path, goals: initial}
	if fi, err := os.Stat(path); err == nil {
		g.mod = fi.ModTime()
	}
	return g
}

// Goals returns the current weekly goal and lifetime target.
func (g *GoalFile) Goals() (weekly, lifetime float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if fi, err := os.Stat(g.path); err == nil && !fi.ModTime().Equal(g.mod) {
		if cfg, err := LoadFromFile(g.path); err == nil {
			g.goals = cfg.Goals
			g.mod = fi.ModTime()
		}
	}
	return g.goals.WeeklyGoal, g.goals.LifetimeTarget
}
