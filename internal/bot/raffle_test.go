package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winnerbot/internal/store"

	tele "gopkg.in/telebot.v4"
)

func raffleContext(userID int64, username string) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID, Username: username},
		chat:   &tele.Chat{ID: 10, Type: tele.ChatGroup},
	}
}

func startRaffle(t *testing.T, mem *store.Store, required string, count int) {
	t.Helper()
	started, err := mem.Raffles.Start(context.Background(), store.Lottery{
		ChatID:         10,
		WinnerCount:    count,
		RequiredGroups: required,
		State:          store.LotteryActive,
	})
	require.NoError(t, err)
	require.True(t, started)
}

func TestJoinRequiresActiveRaffle(t *testing.T) {
	app, _ := newTestApp(t)
	app.checker = &fakeChecker{}

	c := raffleContext(5, "alice")
	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgLotteryNoActive, c.lastSent())
}

func TestJoinGroupOnly(t *testing.T) {
	app, _ := newTestApp(t)
	c := &fakeContext{sender: &tele.User{ID: 5, Username: "alice"}}
	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgLotteryGroupOnly, c.lastSent())
}

func TestJoinChecksMembership(t *testing.T) {
	app, mem := newTestApp(t)
	startRaffle(t, mem.Bundle(), "@groupa", 1)

	app.checker = &fakeChecker{members: map[string]bool{"@groupa": false}}
	c := raffleContext(5, "alice")
	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgLotteryNotQualified, c.lastSent())

	app.checker = &fakeChecker{members: map[string]bool{"@groupa": true}}
	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgLotteryJoined, c.lastSent())

	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgLotteryDuplicate, c.lastSent())
}

func TestJoinFailsClosedOnAPIError(t *testing.T) {
	app, mem := newTestApp(t)
	startRaffle(t, mem.Bundle(), "@groupa", 1)
	app.checker = &fakeChecker{err: errors.New("api down")}

	c := raffleContext(5, "alice")
	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgLotteryNotQualified, c.lastSent())
}

func TestJoinRequiresUsername(t *testing.T) {
	app, mem := newTestApp(t)
	startRaffle(t, mem.Bundle(), "@groupa", 1)
	app.checker = &fakeChecker{members: map[string]bool{"@groupa": true}}

	c := raffleContext(5, "")
	require.NoError(t, app.handleJoin(c))
	assert.Equal(t, msgUsernameRequired, c.lastSent())
}

func TestLotteryEndDrawsWinners(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	startRaffle(t, mem.Bundle(), "", 2)
	app.checker = &fakeChecker{}

	for i := int64(1); i <= 5; i++ {
		joined, err := mem.AddParticipant(ctx, store.Participant{ChatID: 10, UserID: i, Username: "user"})
		require.NoError(t, err)
		require.True(t, joined)
	}

	c := raffleContext(1, "operator")
	require.NoError(t, app.handleLotteryEnd(c))
	assert.Contains(t, c.lastSent(), "추첨 결과 (참여자 5명)")
	assert.Contains(t, c.lastSent(), "@user")

	active, err := mem.Active(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, active, "the session is ENDED after the draw")
}

func TestLotteryEndNoParticipants(t *testing.T) {
	app, mem := newTestApp(t)
	ctx := context.Background()
	startRaffle(t, mem.Bundle(), "", 1)

	c := raffleContext(1, "operator")
	require.NoError(t, app.handleLotteryEnd(c))
	assert.Equal(t, msgLotteryNoParticipants, c.lastSent())

	active, err := mem.Active(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestLotteryEndWithoutActive(t *testing.T) {
	app, _ := newTestApp(t)
	c := raffleContext(1, "operator")
	require.NoError(t, app.handleLotteryEnd(c))
	assert.Equal(t, msgLotteryNoActive, c.lastSent())
}
