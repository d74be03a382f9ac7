// Package diag implements the diagnostics sink every parser and writer in
// this module reports through: an accumulated list of leveled messages
// plus a "worst level seen" join, instead of aborting on every recoverable
// anomaly.
package diag

import (
	"fmt"
	"time"
)

// Level orders diagnostic severity from least to most severe.
type Level int

const (
	// LevelNone indicates no diagnostic messages are present. It must never
	// be used to construct a Message.
	LevelNone Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelCritical
	LevelFatal
)

// WorstLevel is the most severe Level this package defines.
const WorstLevel = LevelFatal

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelDebug:
		return "debug"
	case LevelInformation:
		return "information"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Message is a single diagnostic record.
type Message struct {
	Level   Level
	Text    string
	Context string
	When    time.Time
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s: %s", m.Level, m.Context, m.Text)
}

// Diagnostics accumulates diagnostic Messages for one parse or make call.
type Diagnostics []Message

// Add appends a new Message with the given level, text, and context.
func (d *Diagnostics) Add(level Level, text, context string) {
	*d = append(*d, Message{Level: level, Text: text, Context: context, When: time.Now().UTC()})
}

// Debugf adds a LevelDebug message.
func (d *Diagnostics) Debugf(context, format string, args ...any) {
	d.Add(LevelDebug, fmt.Sprintf(format, args...), context)
}

// Infof adds a LevelInformation message.
func (d *Diagnostics) Infof(context, format string, args ...any) {
	d.Add(LevelInformation, fmt.Sprintf(format, args...), context)
}

// Warnf adds a LevelWarning message.
func (d *Diagnostics) Warnf(context, format string, args ...any) {
	d.Add(LevelWarning, fmt.Sprintf(format, args...), context)
}

// Criticalf adds a LevelCritical message.
func (d *Diagnostics) Criticalf(context, format string, args ...any) {
	d.Add(LevelCritical, fmt.Sprintf(format, args...), context)
}

// Has reports whether any recorded Message is at least as severe as level.
func (d Diagnostics) Has(level Level) bool {
	for _, m := range d {
		if m.Level >= level {
			return true
		}
	}
	return false
}

// Level returns the most severe level among all recorded messages, or
// LevelNone if the Diagnostics is empty.
func (d Diagnostics) Level() Level {
	worst := LevelNone
	for _, m := range d {
		if m.Level > worst {
			worst = m.Level
		}
	}
	return worst
}
