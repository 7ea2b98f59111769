// Package tasks implements the scheduled background tasks of the relay:
// delivery journal maintenance and journal statistics.
package tasks

import (
	"log/slog"

	"github.com/edgard/topicrelay/internal/config"
	"github.com/edgard/topicrelay/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
