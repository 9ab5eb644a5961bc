package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winnerbot/internal/store"
	"winnerbot/internal/telegram/state"

	tele "gopkg.in/telebot.v4"
)

func TestAddWinnerFlow(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()

	require.NoError(t, app.handleAddWinner(c))
	assert.Equal(t, msgPromptProduct, c.lastSent())

	c.text = "텀블러"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgPromptHandles, c.lastSent())

	c.text = "@Alice\nbob"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgHandlesAdded, c.lastSent())

	c.text = "charlie"
	require.NoError(t, app.fsm.ManagerHandler(c))

	require.NoError(t, app.handleEnd(c))
	assert.Equal(t, msgAddDone, c.lastSent())
	assert.False(t, app.fsm.InProgress(c.sender.ID))

	for _, handle := range []string{"@alice", "@bob", "@charlie"} {
		exists, err := mem.HandleExists(ctx, handle)
		require.NoError(t, err)
		assert.True(t, exists, handle)
	}
}

func TestAddWinnerEmptyProductReprompts(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()

	require.NoError(t, app.handleAddWinner(c))
	c.text = "   "
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgEmptyProduct, c.lastSent())
	assert.Equal(t, state.StateAddWinnerProduct, app.fsm.GetState(c.sender.ID), "invalid input keeps the step")
}

func TestAddWinnerEndWithoutHandles(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()

	require.NoError(t, app.handleAddWinner(c))
	c.text = "텀블러"
	require.NoError(t, app.fsm.ManagerHandler(c))
	require.NoError(t, app.handleEnd(c))
	assert.Equal(t, msgNoHandles, c.lastSent())

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSubmitWinnerFlow(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))

	c := &fakeContext{sender: &tele.User{ID: 5, Username: "Alice"}}
	require.NoError(t, app.handleSubmitWinner(c))
	assert.Equal(t, msgPhonePrompt, c.lastSent())

	c.text = "01012345678"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgPhoneInvalid, c.lastSent())
	assert.True(t, app.fsm.InProgress(5), "invalid phone re-prompts in place")

	c.text = "010-1234-5678"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgPhoneSaved, c.lastSent())
	assert.False(t, app.fsm.InProgress(5))

	groups, err := mem.ListGrouped(ctx, store.ListWithPhone)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "010-1234-5678", groups[0].Winners[0].PhoneNumber.String)
}

func TestSubmitWinnerRequiresUsername(t *testing.T) {
	app, _ := newTestApp(t)
	c := &fakeContext{sender: &tele.User{ID: 5}}

	require.NoError(t, app.handleSubmitWinner(c))
	assert.Equal(t, msgUsernameRequired, c.lastSent())
	assert.False(t, app.fsm.InProgress(5))
}

func TestSubmitWinnerUnknownHandle(t *testing.T) {
	app, _ := newTestApp(t)
	c := &fakeContext{sender: &tele.User{ID: 5, Username: "nobody"}}

	require.NoError(t, app.handleSubmitWinner(c))
	assert.Equal(t, msgHandleNotInList, c.lastSent())
	assert.False(t, app.fsm.InProgress(5))
}

func TestSubmitWinnerReverifiesBeforeWrite(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))

	c := &fakeContext{sender: &tele.User{ID: 5, Username: "alice"}}
	require.NoError(t, app.handleSubmitWinner(c))

	// The admin deletes the winner while the user is typing.
	_, err := mem.Delete(ctx, "텀블러", "@alice")
	require.NoError(t, err)

	c.text = "010-1234-5678"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgHandleNotInListRecheck, c.lastSent())
}

func TestDeleteWinnerBatchReport(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@bob"))

	c := adminContext()
	require.NoError(t, app.handleDeleteWinner(c))
	c.text = "텀블러"
	require.NoError(t, app.fsm.ManagerHandler(c))
	c.text = "@alice @ghost"
	require.NoError(t, app.fsm.ManagerHandler(c))
	require.NoError(t, app.handleEnd(c))

	report := c.lastSent()
	assert.Contains(t, report, "삭제됨 (1): @alice")
	assert.Contains(t, report, "찾을 수 없음 (1): @ghost")

	exists, err := mem.HandleExists(ctx, "@bob")
	require.NoError(t, err)
	assert.True(t, exists, "siblings survive a partial batch")
}

func TestDeleteProductFlow(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@bob"))
	require.NoError(t, mem.Upsert(ctx, "스티커", "@alice"))

	c := adminContext()
	require.NoError(t, app.handleDeleteProductWinners(c))
	c.text = "텀블러"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, deletedProductText("텀블러", 2), c.lastSent())

	exists, err := mem.HandleExists(ctx, "@alice")
	require.NoError(t, err)
	assert.True(t, exists, "other products keep their winners")
}

func TestChangeProductFlow(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))

	c := adminContext()
	require.NoError(t, app.handleChangeProductName(c))
	c.text = "@alice"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgPromptNewProduct, c.lastSent())
	c.text = "스티커"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, changeOKText("@alice", "스티커"), c.lastSent())

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "스티커", groups[0].Product)
}

func TestChangeProductNotFound(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()

	require.NoError(t, app.handleChangeProductName(c))
	c.text = "@ghost"
	require.NoError(t, app.fsm.ManagerHandler(c))
	c.text = "스티커"
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, changeNotFoundText("@ghost"), c.lastSent())
}

func TestSetGroupsFlow(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()

	require.NoError(t, app.handleSetGroups(c))
	c.text = "@groupa\nhttps://t.me/groupb"
	require.NoError(t, app.fsm.ManagerHandler(c))
	require.NoError(t, app.handleEnd(c))
	assert.Equal(t, groupsSavedText(2), c.lastSent())

	groups, err := mem.RequiredGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"@groupa", "@groupb"}, groups)
}

func TestCancel(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()

	require.NoError(t, app.handleCancel(c))
	assert.Equal(t, msgNoPending, c.lastSent())

	require.NoError(t, app.handleAddWinner(c))
	require.NoError(t, app.handleCancel(c))
	assert.Equal(t, msgCancelled, c.lastSent())
	assert.False(t, app.fsm.InProgress(c.sender.ID))
}

func TestEndCancelsSingleStepFlow(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))

	c := &fakeContext{sender: &tele.User{ID: 5, Username: "alice"}}
	require.NoError(t, app.handleSubmitWinner(c))
	require.True(t, app.fsm.InProgress(5))

	require.NoError(t, app.handleEnd(c))
	assert.Equal(t, msgCancelled, c.lastSent())
	assert.False(t, app.fsm.InProgress(5), "a flow with nothing to finalize is cancelled")

	groups, err := mem.ListGrouped(ctx, store.ListWithPhone)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestInterruptCommitsGroups(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()

	require.NoError(t, app.handleSetGroups(c))
	c.text = "@groupa"
	require.NoError(t, app.fsm.ManagerHandler(c))

	// Another command arrives before /end; the accumulated list commits.
	app.interruptFlow(c)
	assert.False(t, app.fsm.InProgress(c.sender.ID))

	groups, err := mem.RequiredGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"@groupa"}, groups)
}

func TestInterruptDiscardsOtherFlows(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()

	require.NoError(t, app.handleAddWinner(c))
	c.text = "텀블러"
	require.NoError(t, app.fsm.ManagerHandler(c))
	c.text = "@alice"
	require.NoError(t, app.fsm.ManagerHandler(c))

	app.interruptFlow(c)
	assert.False(t, app.fsm.InProgress(c.sender.ID))

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	assert.Empty(t, groups, "an interrupted accumulator must not commit")
}

func TestNewWorkflowDiscardsOldState(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()

	require.NoError(t, app.handleAddWinner(c))
	c.text = "텀블러"
	require.NoError(t, app.fsm.ManagerHandler(c))

	require.NoError(t, app.handleDeleteProductWinners(c))
	assert.Equal(t, state.StateDeleteProduct, app.fsm.GetState(c.sender.ID))
	_, ok := app.fsm.GetTempString(c.sender.ID, state.TempProduct)
	assert.False(t, ok, "previous flow data must be discarded")
}
