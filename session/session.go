// Package session wraps an engine with the bookkeeping a driving host
// needs: input history and a synchronous run-to-input-boundary loop, so
// that a REPL-style front end never has to touch engine internals
// directly.
package session

import (
	"fmt"

	"vm15/engine"
	"vm15/screen"
)

// Session drives an Engine on behalf of a single interactive host.
type Session struct {
	Engine *engine.Engine
	host   *screen.Screen

	history []string
	halted  bool
}

// New wraps e, communicating through host. host must be the opposite end
// of the Screen pair e.Screen belongs to.
func New(e *engine.Engine, host *screen.Screen) *Session {
	return &Session{Engine: e, host: host}
}

// Bootstrap runs the engine until it halts or starves for input, with no
// host input queued yet. This plays whatever startup text the program
// prints before its first prompt.
func (s *Session) Bootstrap() (string, error) {
	return s.runToBoundary()
}

// Execute appends a trailing newline to line, matching the line-buffered
// input discipline the ISA assumes, feeds it to the engine, and runs until
// the next input boundary. It returns whatever the engine printed in
// response.
func (s *Session) Execute(line string) (string, error) {
	if s.halted {
		return "", fmt.Errorf("session: engine has halted")
	}
	s.history = append(s.history, line)
	if err := s.host.Send(line + "\n"); err != nil {
		return "", err
	}
	return s.runToBoundary()
}

// History returns every line fed to the session via Execute, in order.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// FromCheckpoint replays previously-executed lines against a freshly
// restored engine, recording them into history exactly as Execute would,
// so that a checkpoint's transcript can be fast-forwarded before
// interactive use resumes.
func (s *Session) FromCheckpoint(lines []string) error {
	if _, err := s.Bootstrap(); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := s.Execute(line); err != nil {
			return err
		}
	}
	return nil
}

// Halted reports whether the engine has halted.
func (s *Session) Halted() bool {
	return s.halted
}

// runToBoundary runs the engine until it halts or the next instruction
// would be an in with no input queued, then drains and returns whatever
// output has accumulated.
func (s *Session) runToBoundary() (string, error) {
	halted, err := s.Engine.RunUntilEmpty()
	if halted {
		s.halted = true
	}
	return s.host.GetAll(), err
}
