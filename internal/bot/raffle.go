package bot

import (
	"strconv"
	"strings"
	"time"

	"log/slog"

	"winnerbot/internal/logger"
	"winnerbot/internal/random"
	"winnerbot/internal/store"
	tghelpers "winnerbot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func groupChat(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && (chat.Type == tele.ChatGroup || chat.Type == tele.ChatSuperGroup)
}

// handleLottery opens a raffle in the current group chat.
// Usage: /lottery [minutes] [winner count].
func (a *App) handleLottery(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if !groupChat(c) {
		return tghelpers.SendText(c, msgLotteryGroupOnly)
	}

	required, err := a.store.Settings.RequiredGroups(ctx)
	if err != nil {
		return err
	}
	if len(required) == 0 {
		return tghelpers.SendText(c, msgLotteryGroupsMissing)
	}

	durationMinutes := 0
	winnerCount := 1
	args := c.Args()
	if len(args) > 0 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil && v > 0 {
			durationMinutes = v
		}
	}
	if len(args) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil && v > 0 {
			winnerCount = v
		}
	}

	started, err := a.store.Raffles.Start(ctx, store.Lottery{
		ChatID:          c.Chat().ID,
		StartTime:       time.Now().UTC(),
		DurationMinutes: durationMinutes,
		WinnerCount:     winnerCount,
		RequiredGroups:  store.JoinGroups(required),
		State:           store.LotteryActive,
	})
	if err != nil {
		return err
	}
	if !started {
		return tghelpers.SendText(c, msgLotteryAlreadyActive)
	}

	// The announcement is sent synchronously so its message id can be
	// pinned to the session.
	msg, err := c.Bot().Send(c.Chat(), lotteryStartedText(durationMinutes, winnerCount))
	if err != nil {
		return err
	}
	if err := a.store.Raffles.SetMessageID(ctx, c.Chat().ID, int64(msg.ID)); err != nil {
		logger.Warn(ctx, "bot", "lottery.message_id",
			slog.Int64("chat_id", c.Chat().ID),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

// handleJoin enters the sender into the chat's active raffle after verifying
// the required group memberships. A failed membership lookup counts as not a
// member.
func (a *App) handleJoin(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if !groupChat(c) {
		return tghelpers.SendText(c, msgLotteryGroupOnly)
	}

	lottery, err := a.store.Raffles.Active(ctx, c.Chat().ID)
	if err != nil {
		return err
	}
	if lottery == nil {
		return tghelpers.SendText(c, msgLotteryNoActive)
	}

	sender := c.Sender()
	if strings.TrimSpace(sender.Username) == "" {
		return tghelpers.SendText(c, msgUsernameRequired)
	}

	required := store.SplitGroups(lottery.RequiredGroups)
	if a.checker == nil || !MemberOfAll(ctx, a.checker, required, sender.ID) {
		return tghelpers.SendText(c, msgLotteryNotQualified)
	}

	joined, err := a.store.Raffles.AddParticipant(ctx, store.Participant{
		ChatID:   c.Chat().ID,
		UserID:   sender.ID,
		Username: sender.Username,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if !joined {
		return tghelpers.SendText(c, msgLotteryDuplicate)
	}
	return tghelpers.SendText(c, msgLotteryJoined)
}

// handleLotteryEnd closes the active raffle and announces the drawn winners.
// Usage: /lottery_end [winner count override].
func (a *App) handleLotteryEnd(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if !groupChat(c) {
		return tghelpers.SendText(c, msgLotteryGroupOnly)
	}

	lottery, err := a.store.Raffles.Active(ctx, c.Chat().ID)
	if err != nil {
		return err
	}
	if lottery == nil {
		return tghelpers.SendText(c, msgLotteryNoActive)
	}

	count := lottery.WinnerCount
	if args := c.Args(); len(args) > 0 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil && v > 0 {
			count = v
		}
	}

	participants, err := a.store.Raffles.Participants(ctx, c.Chat().ID)
	if err != nil {
		return err
	}

	if err := a.store.Raffles.End(ctx, c.Chat().ID); err != nil {
		return err
	}

	if len(participants) == 0 {
		return tghelpers.SendText(c, msgLotteryNoParticipants)
	}

	winners, err := random.Pick(participants, count)
	if err != nil {
		return err
	}
	logger.Info(ctx, "bot", "lottery.drawn",
		slog.Int64("chat_id", c.Chat().ID),
		slog.Int("participants", len(participants)),
		slog.Int("winners", len(winners)),
	)
	return tghelpers.SendText(c, lotteryResultText(len(participants), winners))
}
