package telegram

import (
	"strings"
	"time"

	"log/slog"

	"winnerbot/internal/logger"
	tghelpers "winnerbot/internal/telegram/helpers"
	"winnerbot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// FSM is the minimal conversation-manager interface the text router needs.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Admin-only commands additionally pass the silent authorization gate.
func CommandRoutes(reg *Registry, auth middleware.Authorizer) []Route {
	if reg == nil {
		return nil
	}

	routes := make([]Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		name := normalizeHandlerName(cmd)
		h = summarized(name, h)
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(auth)(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
		routes = append(routes, Route{Endpoint: cmd, Handler: h})
	}
	return routes
}

// TextRoutes builds the plain-text route: an in-progress conversation gets the
// message, anything else is dropped silently.
func TextRoutes(fsmMgr FSM) []Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return []Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

func summarized(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, name, start, func() error {
			return h(c)
		})
	}
}

func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn func() error) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	logHandlerSummary(c, handlerName, start, logger.Status(err), err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, status string, err error) {
	// The handler, rid, user and chat identifiers ride in on the context.
	ctx := tghelpers.WithHandler(c, handlerName)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
