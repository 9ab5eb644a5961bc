package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"log/slog"

	"winnerbot/internal/logger"
	"winnerbot/internal/store"
	tghelpers "winnerbot/internal/telegram/helpers"
	"winnerbot/internal/telegram/state"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, msgStart)
}

func (a *App) handleHelp(c tele.Context) error {
	text := msgHelpBase
	if a.admins.IsAdmin(c.Sender().ID) {
		text += msgHelpAdmin
	}
	return tghelpers.SendText(c, text)
}

func (a *App) handleForm(c tele.Context) error {
	return tghelpers.SendText(c, formText(a.cfg.Bot.FormURL))
}

func (a *App) handleListWinners(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	groups, err := a.store.Winners.ListGrouped(ctx, store.ListAll)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, winnerListText(groups, false))
}

func (a *App) handleShowWinners(c tele.Context) error {
	return a.showWinners(c, store.ListAll, true)
}

func (a *App) handleShowWinnersWithPhone(c tele.Context) error {
	return a.showWinners(c, store.ListWithPhone, true)
}

func (a *App) handleShowWinnersWithoutPhone(c tele.Context) error {
	return a.showWinners(c, store.ListWithoutPhone, false)
}

func (a *App) showWinners(c tele.Context, filter store.ListFilter, showPhone bool) error {
	ctx := tghelpers.BuildContext(c)
	groups, err := a.store.Winners.ListGrouped(ctx, filter)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, winnerListText(groups, showPhone))
}

// handleSubmitWinner starts the phone submission flow. The sender must have a
// Telegram username; the handle must appear somewhere in the winner table,
// regardless of product.
func (a *App) handleSubmitWinner(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	a.fsm.Clear(sender.ID)

	if strings.TrimSpace(sender.Username) == "" {
		return tghelpers.SendText(c, msgUsernameRequired)
	}
	handle := store.NormalizeHandle(sender.Username)
	exists, err := a.store.Winners.HandleExists(ctx, handle)
	if err != nil {
		return err
	}
	if !exists {
		return tghelpers.SendText(c, msgHandleNotInList)
	}

	a.fsm.SetTemp(sender.ID, state.TempPendingHandle, handle)
	a.fsm.SetState(sender.ID, state.StateSubmitPhone)
	return tghelpers.SendText(c, msgPhonePrompt)
}

func (a *App) handleAddWinner(c tele.Context) error {
	a.startWorkflow(c, state.StateAddWinnerProduct)
	return tghelpers.SendText(c, msgPromptProduct)
}

func (a *App) handleDeleteWinner(c tele.Context) error {
	a.startWorkflow(c, state.StateDeleteWinnerProduct)
	return tghelpers.SendText(c, msgPromptDeleteProduct)
}

func (a *App) handleDeleteProductWinners(c tele.Context) error {
	a.startWorkflow(c, state.StateDeleteProduct)
	return tghelpers.SendText(c, msgPromptDeleteAllProduct)
}

func (a *App) handleChangeProductName(c tele.Context) error {
	a.startWorkflow(c, state.StateChangeProductHandle)
	return tghelpers.SendText(c, msgPromptChangeHandle)
}

func (a *App) handleClearPhonesProduct(c tele.Context) error {
	a.startWorkflow(c, state.StateClearPhonesProduct)
	return tghelpers.SendText(c, msgPromptClearProduct)
}

func (a *App) handleClearPhonesAll(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	cleared, err := a.store.Winners.ClearPhones(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, clearedPhonesText(cleared))
}

func (a *App) handleSetGroups(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	current, err := a.store.Settings.RequiredGroups(ctx)
	if err != nil {
		return err
	}
	a.startWorkflow(c, state.StateSetGroups)
	return tghelpers.SendText(c, groupsPromptText(current))
}

func (a *App) handleAddAdmin(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	args := c.Args()
	if len(args) < 1 {
		return tghelpers.SendText(c, msgAdminUsageAdd)
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return tghelpers.SendText(c, msgAdminUsageAdd)
	}
	username := ""
	if len(args) > 1 {
		username = strings.TrimPrefix(strings.TrimSpace(args[1]), "@")
	}
	if err := a.admins.Add(ctx, userID, username); err != nil {
		return err
	}
	return tghelpers.SendText(c, adminAddedText(userID))
}

func (a *App) handleDelAdmin(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	args := c.Args()
	if len(args) < 1 {
		return tghelpers.SendText(c, msgAdminUsageDel)
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return tghelpers.SendText(c, msgAdminUsageDel)
	}
	removed, err := a.admins.Remove(ctx, c.Sender().ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrSelfRemoval) {
			return tghelpers.SendText(c, msgAdminSelfRemoval)
		}
		return err
	}
	if removed == 0 {
		return tghelpers.SendText(c, adminNotFoundText(userID))
	}
	return tghelpers.SendText(c, adminRemovedText(userID))
}

func (a *App) handleListAdmins(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	admins, err := a.admins.List(ctx)
	if err != nil {
		return err
	}
	if len(admins) == 0 && len(a.cfg.Telegram.AdminIDs) == 0 {
		return tghelpers.SendText(c, msgAdminListEmpty)
	}
	lines := []string{msgAdminListHeader}
	for _, id := range a.cfg.Telegram.AdminIDs {
		lines = append(lines, fmt.Sprintf("%d (고정)", id))
	}
	for _, adm := range admins {
		line := strconv.FormatInt(adm.UserID, 10)
		if adm.Username != "" {
			line += " @" + adm.Username
		}
		lines = append(lines, line)
	}
	return tghelpers.SendText(c, strings.Join(lines, "\n"))
}

func (a *App) handleBotOn(c tele.Context) error {
	a.enabled.Store(true)
	return tghelpers.SendText(c, msgBotOn)
}

func (a *App) handleBotOff(c tele.Context) error {
	a.enabled.Store(false)
	return tghelpers.SendText(c, msgBotOff)
}

func (a *App) handleBotStatus(c tele.Context) error {
	if a.enabled.Load() {
		return tghelpers.SendText(c, msgBotStatusOn)
	}
	return tghelpers.SendText(c, msgBotStatusOff)
}

func (a *App) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	if !a.fsm.InProgress(userID) {
		return tghelpers.SendText(c, msgNoPending)
	}
	a.fsm.Clear(userID)
	return tghelpers.SendText(c, msgCancelled)
}

// handleEnd finalizes whichever accumulator flow is in progress. A flow that
// has nothing to accumulate is cancelled instead of being left dangling.
func (a *App) handleEnd(c tele.Context) error {
	switch a.fsm.GetState(c.Sender().ID) {
	case state.StateAddWinnerHandles:
		return a.finishAddWinner(c)
	case state.StateDeleteWinnerHandles:
		return a.finishDeleteWinner(c)
	case state.StateSetGroups:
		return a.finishSetGroups(c)
	case state.StateIdle:
		return tghelpers.SendText(c, msgNoPending)
	default:
		a.fsm.Clear(c.Sender().ID)
		return tghelpers.SendText(c, msgCancelled)
	}
}

// startWorkflow begins a fresh conversation, discarding whatever flow the
// user had abandoned.
func (a *App) startWorkflow(c tele.Context, st state.State) {
	userID := c.Sender().ID
	a.fsm.Clear(userID)
	a.fsm.SetState(userID, st)
}

// interruptFlow discards the sender's pending conversation when another
// command arrives. The group-configuration flow is the one exception: its
// accumulated references are committed, matching /end.
func (a *App) interruptFlow(c tele.Context) {
	userID := c.Sender().ID
	st := a.fsm.GetState(userID)
	if st == state.StateIdle {
		return
	}
	if st == state.StateSetGroups {
		if groups := a.fsm.GetTempStrings(userID, state.TempGroups); len(groups) > 0 {
			ctx := tghelpers.BuildContext(c)
			if err := a.store.Settings.SetRequiredGroups(ctx, groups); err != nil {
				logger.Warn(ctx, "bot", "set_groups.interrupt_commit",
					slog.String("err", err.Error()),
				)
			}
		}
	}
	a.fsm.Clear(userID)
}
