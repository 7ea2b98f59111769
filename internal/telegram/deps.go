package telegram

import (
	"log/slog"

	"github.com/edgard/topicrelay/internal/database"
	"github.com/edgard/topicrelay/internal/router"
)

// HandlerDeps provides dependencies for Telegram update handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Router *router.Router
	Store  database.Store
}
