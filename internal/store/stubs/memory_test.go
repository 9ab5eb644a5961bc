package stubs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winnerbot/internal/store"
	"winnerbot/internal/store/stubs"
)

func TestUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()

	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "tumbler", "Alice"), "same pair after normalization")
	require.NoError(t, mem.Upsert(ctx, "tumbler", "alice"))

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Winners, 1)
}

func TestUpsertEmptyHandleIgnored(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@"))
	require.NoError(t, mem.Upsert(ctx, "tumbler", "  "))
	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestHandleExistsGlobal(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))

	exists, err := mem.HandleExists(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, exists, "handle lookup ignores product")

	exists, err = mem.HandleExists(ctx, "@bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetPhoneCoversAllProducts(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "sticker", "@alice"))

	updated, err := mem.SetPhone(ctx, "alice", "010-1234-5678")
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated, "one phone submission serves every win of the handle")

	groups, err := mem.ListGrouped(ctx, store.ListWithPhone)
	require.NoError(t, err)
	total := 0
	for _, g := range groups {
		total += len(g.Winners)
	}
	assert.Equal(t, 2, total)
}

func TestClearPhones(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "sticker", "@bob"))
	_, err := mem.SetPhone(ctx, "@alice", "010-1234-5678")
	require.NoError(t, err)
	_, err = mem.SetPhone(ctx, "@bob", "010-8765-4321")
	require.NoError(t, err)

	cleared, err := mem.ClearProductPhones(ctx, "tumbler")
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)

	cleared, err = mem.ClearPhones(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared, "only the remaining phone is cleared")
}

func TestDeleteBatchIndependent(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@bob"))

	results, err := mem.DeleteBatch(ctx, "tumbler", []string{"@alice", "@ghost", "@bob"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, results["@alice"])
	assert.EqualValues(t, 1, results["@bob"])
	assert.EqualValues(t, 0, results["@ghost"], "missing handle reported, not fatal")
}

func TestChangeProduct(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))

	result, err := mem.ChangeProduct(ctx, "@alice", "sticker")
	require.NoError(t, err)
	assert.Equal(t, store.ChangeOK, result)

	result, err = mem.ChangeProduct(ctx, "@alice", "sticker")
	require.NoError(t, err)
	assert.Equal(t, store.ChangeConflict, result, "destination pair already exists")

	result, err = mem.ChangeProduct(ctx, "@ghost", "sticker")
	require.NoError(t, err)
	assert.Equal(t, store.ChangeNotFound, result)
}

func TestChangeProductMergesMultiProductHandle(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "sticker", "@alice"))

	result, err := mem.ChangeProduct(ctx, "@alice", "mug")
	require.NoError(t, err)
	assert.Equal(t, store.ChangeOK, result)

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "mug", groups[0].Product)
	require.Len(t, groups[0].Winners, 1, "duplicate rows collapse on merge")
	assert.Equal(t, "@alice", groups[0].Winners[0].Handle)
}

func TestChangeProductConflictLeavesRowsIntact(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "tumbler", "@alice"))
	require.NoError(t, mem.Upsert(ctx, "mug", "@alice"))

	result, err := mem.ChangeProduct(ctx, "@alice", "mug")
	require.NoError(t, err)
	assert.Equal(t, store.ChangeConflict, result)

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	require.Len(t, groups, 2, "conflict performs no mutation")
}

func TestListGroupedOrder(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	require.NoError(t, mem.Upsert(ctx, "zebra", "@z1"))
	require.NoError(t, mem.Upsert(ctx, "apple", "@a2"))
	require.NoError(t, mem.Upsert(ctx, "apple", "@a1"))

	groups, err := mem.ListGrouped(ctx, store.ListAll)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "apple", groups[0].Product, "products alphabetical")
	require.Len(t, groups[0].Winners, 2)
	assert.Equal(t, "@a2", groups[0].Winners[0].Handle, "winners in insertion order")
	assert.Equal(t, "@a1", groups[0].Winners[1].Handle)
}

func TestRaffleSingleActive(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()

	started, err := mem.Start(ctx, store.Lottery{ChatID: 10, WinnerCount: 1})
	require.NoError(t, err)
	assert.True(t, started)

	started, err = mem.Start(ctx, store.Lottery{ChatID: 10, WinnerCount: 3})
	require.NoError(t, err)
	assert.False(t, started, "second start while ACTIVE must be rejected")

	require.NoError(t, mem.End(ctx, 10))
	started, err = mem.Start(ctx, store.Lottery{ChatID: 10, WinnerCount: 2})
	require.NoError(t, err)
	assert.True(t, started, "a new session may start after ENDED")
}

func TestRaffleDuplicateJoin(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	_, err := mem.Start(ctx, store.Lottery{ChatID: 10})
	require.NoError(t, err)

	joined, err := mem.AddParticipant(ctx, store.Participant{ChatID: 10, UserID: 5, Username: "alice"})
	require.NoError(t, err)
	assert.True(t, joined)

	joined, err = mem.AddParticipant(ctx, store.Participant{ChatID: 10, UserID: 5, Username: "alice"})
	require.NoError(t, err)
	assert.False(t, joined)

	participants, err := mem.Participants(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestRaffleEndClearsParticipants(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()
	_, err := mem.Start(ctx, store.Lottery{ChatID: 10})
	require.NoError(t, err)
	_, err = mem.AddParticipant(ctx, store.Participant{ChatID: 10, UserID: 5})
	require.NoError(t, err)

	require.NoError(t, mem.End(ctx, 10))

	active, err := mem.Active(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, active)

	participants, err := mem.Participants(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestRequiredGroupsRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := stubs.NewMemory()

	groups, err := mem.RequiredGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	require.NoError(t, mem.SetRequiredGroups(ctx, []string{"@a", "@b"}))
	groups, err = mem.RequiredGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"@a", "@b"}, groups)

	require.NoError(t, mem.SetRequiredGroups(ctx, nil))
	groups, err = mem.RequiredGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
