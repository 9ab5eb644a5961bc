package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"log/slog"

	"winnerbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

// GroupChecker answers whether a user belongs to a required group.
type GroupChecker interface {
	IsMember(ctx context.Context, groupRef string, userID int64) (bool, error)
}

// chatRef addresses a chat by raw chat_id string or @username.
type chatRef string

func (r chatRef) Recipient() string { return string(r) }

// ParseGroupRef canonicalizes an operator-entered group reference into a
// value the Bot API accepts as chat_id. Accepted inputs: a numeric chat id,
// @username, t.me/username links. Private invite links (t.me/+hash,
// t.me/joinchat/...) carry no resolvable chat id.
func ParseGroupRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty group reference")
	}
	if _, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return ref, nil
	}
	if strings.HasPrefix(ref, "@") {
		if len(ref) < 2 {
			return "", fmt.Errorf("invalid group reference %q", ref)
		}
		return ref, nil
	}
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/", "telegram.me/"} {
		if strings.HasPrefix(ref, prefix) {
			rest := strings.TrimPrefix(ref, prefix)
			rest = strings.TrimSuffix(rest, "/")
			if rest == "" || strings.HasPrefix(rest, "+") || strings.HasPrefix(rest, "joinchat/") {
				return "", fmt.Errorf("private invite links are not checkable: %q", ref)
			}
			return "@" + rest, nil
		}
	}
	return "", fmt.Errorf("unrecognized group reference %q", ref)
}

// TelegramGroupChecker checks membership through the Bot API getChatMember call.
type TelegramGroupChecker struct {
	bot *tele.Bot
}

// NewTelegramGroupChecker wires the checker on a running bot instance.
func NewTelegramGroupChecker(bot *tele.Bot) *TelegramGroupChecker {
	return &TelegramGroupChecker{bot: bot}
}

// IsMember reports whether the user currently belongs to the group. Only the
// member, administrator and creator roles qualify; restricted, left and
// kicked do not. Any API failure is reported as an error so callers fail
// closed instead of waving users through.
func (g *TelegramGroupChecker) IsMember(ctx context.Context, groupRef string, userID int64) (bool, error) {
	member, err := g.bot.ChatMemberOf(chatRef(groupRef), &tele.User{ID: userID})
	if err != nil {
		logger.Warn(ctx, "tg", "membership.check_failed",
			slog.String("group", groupRef),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return false, err
	}
	switch member.Role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true, nil
	default:
		return false, nil
	}
}

// MemberOfAll verifies the user against every reference; an empty list
// qualifies everyone. Unparseable references count as not-a-member.
func MemberOfAll(ctx context.Context, checker GroupChecker, refs []string, userID int64) bool {
	for _, raw := range refs {
		ref, err := ParseGroupRef(raw)
		if err != nil {
			logger.Warn(ctx, "tg", "membership.bad_ref",
				slog.String("ref", raw),
				slog.String("err", err.Error()),
			)
			return false
		}
		ok, err := checker.IsMember(ctx, ref, userID)
		if err != nil || !ok {
			return false
		}
	}
	return true
}
