package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEnded     = errors.New("session: ended")
	ErrNoStudent = errors.New("session: student id required")
)

// Student identifies the learner a session acts for.
type Student struct {
	ID    string
	Name  string
	Grade int
}

// Context is the explicit per-login session. It is created when a student
// logs in and ended when they log out; lesson and quiz runs take it as a
// constructor argument instead of looking up an ambient current student.
type Context struct {
	ID        string
	Student   Student
	StartedAt time.Time

	mu    sync.RWMutex
	ended bool
}

// Start opens a session for st.
func Start(st Student) (*Context, error) {
	if st.ID == "" {
		return nil, ErrNoStudent
	}
	return &Context{
		ID:        uuid.NewString(),
		Student:   st,
		StartedAt: time.Now(),
	}, nil
}

// End closes the session. Ending twice is harmless.
func (c *Context) End() {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
}

func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.ended
}

// StudentID returns the student's id, or ErrEnded once the session is over.
func (c *Context) StudentID() (string, error) {
	if !c.Active() {
		return "", ErrEnded
	}
	return c.Student.ID, nil
}
