package bot

import (
	"strings"

	"log/slog"

	"github.com/hashicorp/go-multierror"

	"winnerbot/internal/logger"
	"winnerbot/internal/store"
	tghelpers "winnerbot/internal/telegram/helpers"
	"winnerbot/internal/telegram/state"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerWorkflows() {
	a.fsm.RegisterHandler(state.StateAddWinnerProduct, a.stateAddWinnerProduct)
	a.fsm.RegisterHandler(state.StateAddWinnerHandles, a.stateAddWinnerHandles)
	a.fsm.RegisterHandler(state.StateDeleteProduct, a.stateDeleteProduct)
	a.fsm.RegisterHandler(state.StateDeleteWinnerProduct, a.stateDeleteWinnerProduct)
	a.fsm.RegisterHandler(state.StateDeleteWinnerHandles, a.stateDeleteWinnerHandles)
	a.fsm.RegisterHandler(state.StateChangeProductHandle, a.stateChangeProductHandle)
	a.fsm.RegisterHandler(state.StateChangeProductName, a.stateChangeProductName)
	a.fsm.RegisterHandler(state.StateClearPhonesProduct, a.stateClearPhonesProduct)
	a.fsm.RegisterHandler(state.StateSetGroups, a.stateSetGroups)
	a.fsm.RegisterHandler(state.StateSubmitPhone, a.stateSubmitPhone)
}

// splitLines breaks a message into trimmed non-empty lines. Winners are
// pasted one handle per line, but a single line with several handles
// separated by spaces works too.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, field := range strings.Fields(line) {
			out = append(out, field)
		}
	}
	return out
}

func (a *App) stateAddWinnerProduct(c tele.Context) error {
	product := strings.TrimSpace(c.Text())
	if product == "" {
		return tghelpers.SendText(c, msgEmptyProduct)
	}
	userID := c.Sender().ID
	a.fsm.SetTemp(userID, state.TempProduct, product)
	a.fsm.SetState(userID, state.StateAddWinnerHandles)
	return tghelpers.SendText(c, msgPromptHandles)
}

func (a *App) stateAddWinnerHandles(c tele.Context) error {
	userID := c.Sender().ID
	var handles []string
	for _, raw := range splitLines(c.Text()) {
		if h := store.NormalizeHandle(raw); h != "" {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return tghelpers.SendText(c, msgPromptHandles)
	}
	a.fsm.AppendTempStrings(userID, state.TempHandles, handles...)
	return tghelpers.SendText(c, msgHandlesAdded)
}

func (a *App) finishAddWinner(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	product, _ := a.fsm.GetTempString(userID, state.TempProduct)
	handles := a.fsm.GetTempStrings(userID, state.TempHandles)
	a.fsm.Clear(userID)

	if product == "" || len(handles) == 0 {
		return tghelpers.SendText(c, msgNoHandles)
	}

	// Each handle is registered independently; one bad row must not lose
	// the rest of a pasted batch.
	var errs *multierror.Error
	for _, handle := range handles {
		if err := a.store.Winners.Upsert(ctx, product, handle); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		logger.Error(ctx, "bot", "add_winner.partial",
			slog.String("product", product),
			slog.Int("handles", len(handles)),
			slog.String("err", err.Error()),
		)
		return err
	}
	return tghelpers.SendText(c, msgAddDone)
}

func (a *App) stateDeleteProduct(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	product := strings.TrimSpace(c.Text())
	if product == "" {
		return tghelpers.SendText(c, msgEmptyProduct)
	}
	a.fsm.Clear(c.Sender().ID)
	deleted, err := a.store.Winners.DeleteProduct(ctx, product)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, deletedProductText(product, deleted))
}

func (a *App) stateDeleteWinnerProduct(c tele.Context) error {
	product := strings.TrimSpace(c.Text())
	if product == "" {
		return tghelpers.SendText(c, msgEmptyProduct)
	}
	userID := c.Sender().ID
	a.fsm.SetTemp(userID, state.TempProduct, product)
	a.fsm.SetState(userID, state.StateDeleteWinnerHandles)
	return tghelpers.SendText(c, msgPromptDeleteHandles)
}

func (a *App) stateDeleteWinnerHandles(c tele.Context) error {
	userID := c.Sender().ID
	var handles []string
	for _, raw := range splitLines(c.Text()) {
		if h := store.NormalizeHandle(raw); h != "" {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return tghelpers.SendText(c, msgPromptDeleteHandles)
	}
	a.fsm.AppendTempStrings(userID, state.TempHandles, handles...)
	return tghelpers.SendText(c, msgHandlesAdded)
}

func (a *App) finishDeleteWinner(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	product, _ := a.fsm.GetTempString(userID, state.TempProduct)
	handles := a.fsm.GetTempStrings(userID, state.TempHandles)
	a.fsm.Clear(userID)

	if product == "" || len(handles) == 0 {
		return tghelpers.SendText(c, msgNoDeleteHandles)
	}
	results, err := a.store.Winners.DeleteBatch(ctx, product, handles)
	if err != nil {
		logger.Warn(ctx, "bot", "delete_winner.partial",
			slog.String("product", product),
			slog.String("err", err.Error()),
		)
	}
	if results == nil {
		return err
	}
	return tghelpers.SendText(c, deleteReportText(product, results, handles))
}

func (a *App) stateChangeProductHandle(c tele.Context) error {
	handle := store.NormalizeHandle(c.Text())
	if handle == "" {
		return tghelpers.SendText(c, msgPromptChangeHandle)
	}
	userID := c.Sender().ID
	a.fsm.SetTemp(userID, state.TempPendingHandle, handle)
	a.fsm.SetState(userID, state.StateChangeProductName)
	return tghelpers.SendText(c, msgPromptNewProduct)
}

func (a *App) stateChangeProductName(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	newProduct := strings.TrimSpace(c.Text())
	if newProduct == "" {
		return tghelpers.SendText(c, msgEmptyProduct)
	}
	userID := c.Sender().ID
	handle, _ := a.fsm.GetTempString(userID, state.TempPendingHandle)
	a.fsm.Clear(userID)

	result, err := a.store.Winners.ChangeProduct(ctx, handle, newProduct)
	if err != nil {
		return err
	}
	switch result {
	case store.ChangeOK:
		return tghelpers.SendText(c, changeOKText(handle, newProduct))
	case store.ChangeConflict:
		return tghelpers.SendText(c, changeConflictText(handle, newProduct))
	default:
		return tghelpers.SendText(c, changeNotFoundText(handle))
	}
}

func (a *App) stateClearPhonesProduct(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	product := strings.TrimSpace(c.Text())
	if product == "" {
		return tghelpers.SendText(c, msgEmptyProduct)
	}
	a.fsm.Clear(c.Sender().ID)
	cleared, err := a.store.Winners.ClearProductPhones(ctx, product)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, clearedProductPhonesText(product, cleared))
}

func (a *App) stateSetGroups(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	var accepted []string
	var rejected []string
	for _, raw := range splitLines(c.Text()) {
		ref, err := ParseGroupRef(raw)
		if err != nil {
			rejected = append(rejected, raw)
			continue
		}
		accepted = append(accepted, ref)
	}
	if len(accepted) > 0 {
		a.fsm.AppendTempStrings(userID, state.TempGroups, accepted...)
	}
	if len(rejected) > 0 {
		logger.Warn(ctx, "bot", "set_groups.rejected",
			slog.String("refs", strings.Join(rejected, ",")),
		)
		return tghelpers.SendText(c, "인식할 수 없는 그룹 참조입니다: "+strings.Join(rejected, ", "))
	}
	return tghelpers.SendText(c, msgHandlesAdded)
}

func (a *App) finishSetGroups(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	groups := a.fsm.GetTempStrings(userID, state.TempGroups)
	a.fsm.Clear(userID)

	if err := a.store.Settings.SetRequiredGroups(ctx, groups); err != nil {
		return err
	}
	return tghelpers.SendText(c, groupsSavedText(len(groups)))
}

// stateSubmitPhone finishes the phone submission flow. The handle is looked
// up a second time right before writing; the admin may have removed it while
// the user was typing.
func (a *App) stateSubmitPhone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	phone := strings.TrimSpace(c.Text())
	if !ValidPhone(phone) {
		return tghelpers.SendText(c, msgPhoneInvalid)
	}

	handle, ok := a.fsm.GetTempString(userID, state.TempPendingHandle)
	a.fsm.Clear(userID)
	if !ok || handle == "" {
		return tghelpers.SendText(c, msgHandleNotInListRecheck)
	}

	exists, err := a.store.Winners.HandleExists(ctx, handle)
	if err != nil {
		return err
	}
	if !exists {
		return tghelpers.SendText(c, msgHandleNotInListRecheck)
	}

	if _, err := a.store.Winners.SetPhone(ctx, handle, phone); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgPhoneSaved)
}
