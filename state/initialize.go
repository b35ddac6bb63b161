package state

import (
	"time"

	"github.com/google/uuid"
)

// newLocalEnv creates a new LocalEnv instance with default values.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		RunID: newRunID(),
	}
}

// newRunID returns time ordered identifier, so reports and journal runs sort
// naturally.
func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
