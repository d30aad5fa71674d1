package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreFailure = errors.New("simulated store failure")

// fakeStore is an in-memory persistence gateway with snapshot-based
// rollback, so transactional behavior can be asserted without a database.
type fakeStore struct {
	users   map[string]*models.User
	chains  map[int64]*models.Chain
	events  map[string]*models.DrinkCheck
	credits []*models.Credit

	nextUserID   int64
	nextChainID  int64
	nextCreditID int64

	failOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*models.User),
		chains: make(map[int64]*models.Chain),
		events: make(map[string]*models.DrinkCheck),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	c.nextUserID = s.nextUserID
	c.nextChainID = s.nextChainID
	c.nextCreditID = s.nextCreditID
	c.failOn = s.failOn
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.chains {
		ch := *v
		c.chains[k] = &ch
	}
	for k, v := range s.events {
		e := *v
		c.events[k] = &e
	}
	for _, v := range s.credits {
		cr := *v
		c.credits = append(c.credits, &cr)
	}
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.users = from.users
	s.chains = from.chains
	s.events = from.events
	s.credits = from.credits
	s.nextUserID = from.nextUserID
	s.nextChainID = from.nextChainID
	s.nextCreditID = from.nextCreditID
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	snapshot := s.clone()
	if err := fn(ctx, &fakeTx{store: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) fail(op string) error {
	if t.store.failOn == op {
		return errStoreFailure
	}
	return nil
}

func (t *fakeTx) GetOrCreateUser(_ context.Context, discordID, username string) (*models.User, error) {
	if err := t.fail("GetOrCreateUser"); err != nil {
		return nil, err
	}
	if u, ok := t.store.users[discordID]; ok {
		copied := *u
		return &copied, nil
	}
	t.store.nextUserID++
	u := &models.User{ID: t.store.nextUserID, DiscordID: discordID, Username: username}
	t.store.users[discordID] = u
	copied := *u
	return &copied, nil
}

func (t *fakeTx) UpdateUser(_ context.Context, user *models.User) error {
	if err := t.fail("UpdateUser"); err != nil {
		return err
	}
	copied := *user
	t.store.users[user.DiscordID] = &copied
	return nil
}

func (t *fakeTx) ActiveChain(_ context.Context) (*models.Chain, error) {
	if err := t.fail("ActiveChain"); err != nil {
		return nil, err
	}
	for _, c := range t.store.chains {
		if c.Active {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) CreateChain(_ context.Context, c *models.Chain) error {
	if err := t.fail("CreateChain"); err != nil {
		return err
	}
	t.store.nextChainID++
	c.ID = t.store.nextChainID
	copied := *c
	t.store.chains[c.ID] = &copied
	return nil
}

func (t *fakeTx) UpdateChain(_ context.Context, c *models.Chain) error {
	if err := t.fail("UpdateChain"); err != nil {
		return err
	}
	copied := *c
	t.store.chains[c.ID] = &copied
	return nil
}

func (t *fakeTx) DeactivateChain(_ context.Context, id int64) error {
	if err := t.fail("DeactivateChain"); err != nil {
		return err
	}
	if c, ok := t.store.chains[id]; ok {
		c.Active = false
	}
	return nil
}

func (t *fakeTx) DrinkCheckExists(_ context.Context, messageID string) (bool, error) {
	if err := t.fail("DrinkCheckExists"); err != nil {
		return false, err
	}
	_, ok := t.store.events[messageID]
	return ok, nil
}

func (t *fakeTx) InsertDrinkCheck(_ context.Context, dc *models.DrinkCheck) error {
	if err := t.fail("InsertDrinkCheck"); err != nil {
		return err
	}
	copied := *dc
	t.store.events[dc.MessageID] = &copied
	return nil
}

func (t *fakeTx) InsertCredit(_ context.Context, credit *models.Credit) error {
	if err := t.fail("InsertCredit"); err != nil {
		return err
	}
	t.store.nextCreditID++
	credit.ID = t.store.nextCreditID
	copied := *credit
	t.store.credits = append(t.store.credits, &copied)
	return nil
}

func (t *fakeTx) RecordHolder(_ context.Context) (*models.Chain, error) {
	if err := t.fail("RecordHolder"); err != nil {
		return nil, err
	}
	for _, c := range t.store.chains {
		if c.ServerRecord {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) ClearRecordFlag(_ context.Context, id int64) error {
	if err := t.fail("ClearRecordFlag"); err != nil {
		return err
	}
	if c, ok := t.store.chains[id]; ok {
		c.ServerRecord = false
	}
	return nil
}

func (t *fakeTx) SetRecordFlag(_ context.Context, id int64) error {
	if err := t.fail("SetRecordFlag"); err != nil {
		return err
	}
	if c, ok := t.store.chains[id]; ok {
		c.ServerRecord = true
	}
	return nil
}

func (s *fakeStore) countActive() int {
	n := 0
	for _, c := range s.chains {
		if c.Active {
			n++
		}
	}
	return n
}

func (s *fakeStore) countRecordHolders() int {
	n := 0
	for _, c := range s.chains {
		if c.ServerRecord {
			n++
		}
	}
	return n
}

func newTestTracker(store *fakeStore, now *time.Time) *Tracker {
	tr := NewTracker(store)
	tr.now = func() time.Time { return *now }
	return tr
}

func msgAt(id, author string, n time.Time) Message {
	return Message{
		ID:            id,
		AuthorID:      author,
		AuthorName:    "user-" + author,
		ChannelID:     "900",
		Content:       "drink check!",
		HasAttachment: true,
		Timestamp:     n,
	}
}

func TestProcess_StartsNewChain(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	result, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	assert.True(t, result.NewChain)
	assert.Equal(t, 1, result.Chain.TotalMessages)
	assert.Equal(t, "u1", result.Chain.StarterID)
	assert.Equal(t, models.CreditInitial, result.Credit.CreditType)
	assert.Equal(t, int64(1), result.User.TotalCredits)
	assert.Equal(t, 1, result.User.LongestChainStreak)

	// First chain ever also takes the vacant record.
	assert.True(t, result.NewRecord)

	assert.Equal(t, 1, store.countActive())
	assert.Equal(t, 1, store.countRecordHolders())
}

func TestProcess_ContinuesChain(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	_, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	reply := msgAt("101", "u2", now)
	reply.Content = "count me in"
	reply.IsReply = true
	reply.RepliedToMessageID = "100"

	result, err := tr.Process(context.Background(), reply)
	require.NoError(t, err)

	assert.False(t, result.NewChain)
	assert.Equal(t, 2, result.Chain.TotalMessages)
	assert.Equal(t, "u2", result.Chain.LastMessageAuthorID)
	assert.Equal(t, models.CreditChain, result.Credit.CreditType)
	assert.Equal(t, now, result.Chain.LastActivity, "continuation must reset the inactivity timer")

	assert.Equal(t, int64(1), store.users["u2"].TotalCredits)
	assert.Equal(t, 2, store.users["u2"].LongestChainStreak)
	assert.Equal(t, 1, store.users["u1"].LongestChainStreak, "starter's streak only moves while they post")
	assert.Equal(t, 1, store.countActive())
}

func TestProcess_TimerResetsForStarterAndSelfReply(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	_, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	// The starter posts again; the timer still resets.
	now = now.Add(20 * time.Minute)
	result, err := tr.Process(context.Background(), msgAt("101", "u1", now))
	require.NoError(t, err)
	assert.Equal(t, now, result.Chain.LastActivity)

	// 25 minutes later the chain is still alive only because of that reset.
	now = now.Add(25 * time.Minute)
	result, err = tr.Process(context.Background(), msgAt("102", "u1", now))
	require.NoError(t, err)
	assert.False(t, result.NewChain)
	assert.Equal(t, 3, result.Chain.TotalMessages)
}

func TestProcess_ExpiredChainStartsNew(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	first, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	result, err := tr.Process(context.Background(), msgAt("200", "u3", now))
	require.NoError(t, err)

	assert.True(t, result.NewChain)
	assert.Equal(t, "u3", result.Chain.StarterID)
	assert.Equal(t, 1, result.Chain.TotalMessages)
	assert.NotEqual(t, first.Chain.ID, result.Chain.ID)

	assert.False(t, store.chains[first.Chain.ID].Active, "expired chain must be deactivated")
	assert.Equal(t, 1, store.countActive())
}

func TestProcess_ExactlyAtWindowExpires(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	_, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	// The threshold is inclusive: exactly 30 minutes counts as expired.
	now = now.Add(models.ChainWindow)
	result, err := tr.Process(context.Background(), msgAt("101", "u2", now))
	require.NoError(t, err)
	assert.True(t, result.NewChain)
}

func TestProcess_RecordTransfer(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	// Retired record holder at 7 messages.
	store.nextChainID = 2
	store.chains[1] = &models.Chain{
		ID:            1,
		StarterID:     "u9",
		TotalMessages: 7,
		Active:        false,
		ServerRecord:  true,
		StartTime:     now.Add(-48 * time.Hour),
		LastActivity:  now.Add(-48 * time.Hour),
	}
	// Running chain at 9, one short of double digits.
	store.chains[2] = &models.Chain{
		ID:                  2,
		StarterID:           "u1",
		StartMessageID:      "10",
		LastMessageID:       "18",
		LastMessageAuthorID: "u1",
		TotalMessages:       9,
		Active:              true,
		StartTime:           now.Add(-20 * time.Minute),
		LastActivity:        now.Add(-time.Minute),
	}

	tr := newTestTracker(store, &now)
	result, err := tr.Process(context.Background(), msgAt("300", "u2", now))
	require.NoError(t, err)

	assert.Equal(t, 10, result.Chain.TotalMessages)
	assert.True(t, result.NewRecord)
	assert.True(t, result.Milestone)
	assert.False(t, store.chains[1].ServerRecord, "previous holder keeps no flag")
	assert.True(t, store.chains[2].ServerRecord)
	assert.Equal(t, 1, store.countRecordHolders())
}

func TestProcess_NoRecordUntilStrictlyGreater(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	store.nextChainID = 2
	store.chains[1] = &models.Chain{
		ID: 1, StarterID: "u9", TotalMessages: 5, ServerRecord: true,
		LastActivity: now.Add(-24 * time.Hour),
	}
	store.chains[2] = &models.Chain{
		ID: 2, StarterID: "u1", TotalMessages: 4, Active: true,
		LastActivity: now.Add(-time.Minute),
	}

	tr := newTestTracker(store, &now)
	result, err := tr.Process(context.Background(), msgAt("400", "u2", now))
	require.NoError(t, err)

	// Tied at 5: the record stays where it is.
	assert.Equal(t, 5, result.Chain.TotalMessages)
	assert.False(t, result.NewRecord)
	assert.True(t, store.chains[1].ServerRecord)
	assert.Equal(t, 1, store.countRecordHolders())
}

func TestProcess_DuplicateMessage(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	_, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	// Same tracker: caught by the LRU.
	_, err = tr.Process(context.Background(), msgAt("100", "u1", now))
	assert.ErrorIs(t, err, ErrDuplicateMessage)

	// Fresh tracker over the same store: caught by the store check.
	tr2 := newTestTracker(store, &now)
	_, err = tr2.Process(context.Background(), msgAt("100", "u1", now))
	assert.ErrorIs(t, err, ErrDuplicateMessage)

	assert.Equal(t, int64(1), store.users["u1"].TotalCredits, "no double credit")
	assert.Len(t, store.credits, 1)
	assert.Len(t, store.events, 1)
	assert.Equal(t, 1, store.chains[1].TotalMessages)
}

func TestProcess_RollbackOnFailure(t *testing.T) {
	store := newFakeStore()
	store.failOn = "InsertCredit"
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	_, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.ErrorIs(t, err, errStoreFailure)

	// Nothing partial survives the rollback.
	assert.Empty(t, store.users)
	assert.Empty(t, store.chains)
	assert.Empty(t, store.events)
	assert.Empty(t, store.credits)

	// The failed message was not cached; a redelivery succeeds.
	store.failOn = ""
	result, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)
	assert.True(t, result.NewChain)
}

func TestProcess_MilestoneEveryFifth(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	for i := 1; i <= 6; i++ {
		now = now.Add(time.Minute)
		result, err := tr.Process(context.Background(), msgAt(fmt.Sprintf("%d", 100+i), "u1", now))
		require.NoError(t, err)
		assert.Equal(t, i == 5, result.Milestone, "message %d", i)
	}
}

func TestProcess_TotalsNeverDecrease(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	var last int64
	for i := 0; i < 8; i++ {
		now = now.Add(7 * time.Minute)
		_, err := tr.Process(context.Background(), msgAt(fmt.Sprintf("m%d", i), "u1", now))
		require.NoError(t, err)

		total := store.users["u1"].TotalCredits
		assert.GreaterOrEqual(t, total, last)
		last = total

		assert.LessOrEqual(t, store.countActive(), 1)
		assert.LessOrEqual(t, store.countRecordHolders(), 1)
	}
}

func TestReset(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr := newTestTracker(store, &now)

	closed, err := tr.Reset(context.Background())
	require.NoError(t, err)
	assert.False(t, closed, "nothing to close yet")

	result, err := tr.Process(context.Background(), msgAt("100", "u1", now))
	require.NoError(t, err)

	closed, err = tr.Reset(context.Background())
	require.NoError(t, err)
	assert.True(t, closed)
	assert.False(t, store.chains[result.Chain.ID].Active)
	assert.Equal(t, 0, store.countActive())
}
