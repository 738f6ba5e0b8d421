package loopback

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/oxy-remote/engine/session"
)

type connector struct {
	mu       *sync.Mutex
	options  []SessionBuilderOption
	sessions []Session
}

// Connector opens loopback sessions and keeps track of them.
type Connector interface {
	session.Connector

	// Sessions returns every session opened so far, oldest first.
	//
	// Returns:
	//   - []Session: the opened sessions
	Sessions() []Session
}

var _ Connector = &connector{}

// NewConnector creates a Connector whose sessions are built with options.
//
// Parameters:
//   - options: applied to every new session
//
// Returns:
//   - Connector: the connector
func NewConnector(options ...SessionBuilderOption) Connector {
	return &connector{mu: &sync.Mutex{}, options: options}
}

func (c *connector) Connect(ctx context.Context) (session.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := NewSession(c.options...)
	s.Connect()

	c.mu.Lock()
	c.sessions = append(c.sessions, s)
	c.mu.Unlock()
	return s, nil
}

func (c *connector) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}
