package middleware

import (
	"log/slog"

	"winnerbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

// Authorizer answers admin checks for incoming updates.
type Authorizer interface {
	IsAdmin(userID int64) bool
}

// Switch reports whether the bot currently accepts regular traffic.
type Switch interface {
	Enabled() bool
}

// AdminOnlyMiddleware ensures that only admins can invoke downstream handlers.
// Non-admin callers get no reply at all; admin commands are not advertised to
// regular users, so they are not acknowledged either.
func AdminOnlyMiddleware(auth Authorizer) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || !auth.IsAdmin(sender.ID) {
				if sender != nil {
					logger.TG.Debug("admin command rejected",
						slog.String("event", "tg.unauthorized"),
						slog.Int64("user_id", sender.ID),
					)
				}
				return nil
			}
			return next(c)
		}
	}
}

// EnabledGateMiddleware drops non-admin traffic while the bot is switched
// off. Admins keep access so /bot_on remains reachable.
func EnabledGateMiddleware(sw Switch, auth Authorizer) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if sw.Enabled() {
				return next(c)
			}
			sender := c.Sender()
			if sender != nil && auth.IsAdmin(sender.ID) {
				return next(c)
			}
			return nil
		}
	}
}
