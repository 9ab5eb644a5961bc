package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestHelpShowsAdminSectionOnlyToAdmins(t *testing.T) {
	app, _ := newTestApp(t)

	admin := adminContext()
	require.NoError(t, app.handleHelp(admin))
	assert.Contains(t, admin.lastSent(), "관리자 전용 명령어")

	user := &fakeContext{sender: &tele.User{ID: 5, Username: "alice"}}
	require.NoError(t, app.handleHelp(user))
	assert.NotContains(t, user.lastSent(), "관리자 전용 명령어")
}

func TestFormLink(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()

	require.NoError(t, app.handleForm(c))
	assert.Equal(t, msgFormNotSet, c.lastSent())

	app.cfg.Bot.FormURL = "https://forms.example.com/f"
	require.NoError(t, app.handleForm(c))
	assert.Contains(t, c.lastSent(), "https://forms.example.com/f")
}

func TestListWinnersFormatting(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()

	require.NoError(t, app.handleListWinners(c))
	assert.Equal(t, msgNoWinners, c.lastSent())

	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@bob"))
	_, err := mem.SetPhone(ctx, "@alice", "010-1234-5678")
	require.NoError(t, err)

	require.NoError(t, app.handleListWinners(c))
	listing := c.lastSent()
	assert.True(t, strings.HasPrefix(listing, msgWinnersHeader))
	assert.Contains(t, listing, "1. @alice")
	assert.Contains(t, listing, "2. @bob")
	assert.NotContains(t, listing, "010-1234-5678", "the public listing never leaks phones")

	require.NoError(t, app.handleShowWinners(c))
	assert.Contains(t, c.lastSent(), "010-1234-5678")
	assert.Contains(t, c.lastSent(), "(미제출)")
}

func TestShowWinnersFilters(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	c := adminContext()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@bob"))
	_, err := mem.SetPhone(ctx, "@alice", "010-1234-5678")
	require.NoError(t, err)

	require.NoError(t, app.handleShowWinnersWithPhone(c))
	assert.Contains(t, c.lastSent(), "@alice")
	assert.NotContains(t, c.lastSent(), "@bob")

	require.NoError(t, app.handleShowWinnersWithoutPhone(c))
	assert.Contains(t, c.lastSent(), "@bob")
	assert.NotContains(t, c.lastSent(), "@alice")
}

func TestClearPhonesAll(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, "텀블러", "@alice"))
	_, err := mem.SetPhone(ctx, "@alice", "010-1234-5678")
	require.NoError(t, err)

	c := adminContext()
	require.NoError(t, app.handleClearPhonesAll(c))
	assert.Equal(t, clearedPhonesText(1), c.lastSent())
}

func TestAdminCommands(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.admins.Load(context.Background()))
	c := adminContext()

	require.NoError(t, app.handleAddAdmin(c))
	assert.Equal(t, msgAdminUsageAdd, c.lastSent())

	c.args = []string{"not-a-number"}
	require.NoError(t, app.handleAddAdmin(c))
	assert.Equal(t, msgAdminUsageAdd, c.lastSent())

	c.args = []string{"42", "@alice"}
	require.NoError(t, app.handleAddAdmin(c))
	assert.Equal(t, adminAddedText(42), c.lastSent())
	assert.True(t, app.admins.IsAdmin(42))

	c.args = []string{"42"}
	require.NoError(t, app.handleListAdmins(c))
	assert.Contains(t, c.lastSent(), "42 @alice")
	assert.Contains(t, c.lastSent(), "1 (고정)")

	require.NoError(t, app.handleDelAdmin(c))
	assert.Equal(t, adminRemovedText(42), c.lastSent())
	assert.False(t, app.admins.IsAdmin(42))

	c.args = []string{"42"}
	require.NoError(t, app.handleDelAdmin(c))
	assert.Equal(t, adminNotFoundText(42), c.lastSent())

	c.args = []string{"1"}
	require.NoError(t, app.handleDelAdmin(c))
	assert.Equal(t, msgAdminSelfRemoval, c.lastSent())
}

func TestBotToggle(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()

	assert.True(t, app.Enabled())
	require.NoError(t, app.handleBotStatus(c))
	assert.Equal(t, msgBotStatusOn, c.lastSent())

	require.NoError(t, app.handleBotOff(c))
	assert.False(t, app.Enabled())
	require.NoError(t, app.handleBotStatus(c))
	assert.Equal(t, msgBotStatusOff, c.lastSent())

	require.NoError(t, app.handleBotOn(c))
	assert.True(t, app.Enabled())
}

func TestEndWithoutFlow(t *testing.T) {
	app, _ := newTestApp(t)
	c := adminContext()
	require.NoError(t, app.handleEnd(c))
	assert.Equal(t, msgNoPending, c.lastSent())
}
