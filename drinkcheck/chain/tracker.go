package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/database/models"
)

var (
	// ErrDuplicateMessage means the message ID was already processed. The
	// correct reaction is a silent no-op, never a second credit.
	ErrDuplicateMessage = errors.New("message already processed")
)

// Message is the slice of a gateway message event the tracker cares about.
type Message struct {
	ID                 string
	AuthorID           string
	AuthorName         string
	ChannelID          string
	Content            string
	HasAttachment      bool
	IsReply            bool
	RepliedToMessageID string
	Timestamp          time.Time
}

// Result describes what one qualifying message did to the chain state.
type Result struct {
	Chain     *models.Chain
	Credit    *models.Credit
	User      *models.User
	NewChain  bool
	NewRecord bool
	Milestone bool
}

// Tx is the set of persistence operations available inside one atomic
// transaction. Every mutation the tracker performs goes through it, so a
// failed commit rolls the whole message back.
type Tx interface {
	GetOrCreateUser(ctx context.Context, discordID, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	ActiveChain(ctx context.Context) (*models.Chain, error)
	CreateChain(ctx context.Context, chain *models.Chain) error
	UpdateChain(ctx context.Context, chain *models.Chain) error
	DeactivateChain(ctx context.Context, id int64) error

	DrinkCheckExists(ctx context.Context, messageID string) (bool, error)
	InsertDrinkCheck(ctx context.Context, dc *models.DrinkCheck) error
	InsertCredit(ctx context.Context, credit *models.Credit) error

	RecordHolder(ctx context.Context) (*models.Chain, error)
	ClearRecordFlag(ctx context.Context, id int64) error
	SetRecordFlag(ctx context.Context, id int64) error
}

// Store runs a function inside a single commit-or-rollback transaction.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tracker owns the single active chain. Process serializes the whole
// classify-to-commit sequence through a mutex on top of the transaction, so
// two concurrent qualifying messages cannot both open a new chain.
type Tracker struct {
	store Store
	now   func() time.Time

	mu   sync.Mutex
	seen *lru.Cache
}

func NewTracker(store Store) *Tracker {
	// Cache creation only fails on a non-positive size.
	seen, _ := lru.New(config.RecentMessageCacheSize)
	return &Tracker{
		store: store,
		now:   time.Now,
		seen:  seen,
	}
}

// Process runs the full drink check sequence for one qualifying message:
// resolve or create the active chain, issue a credit, update the author's
// totals, and check the server record. All of it commits as one unit.
func (t *Tracker) Process(ctx context.Context, msg Message) (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Front-line idempotency: gateway redeliveries usually show up within
	// seconds, so an LRU hit saves a round trip. The DB check below remains
	// authoritative.
	if t.seen.Contains(msg.ID) {
		return nil, ErrDuplicateMessage
	}

	now := t.now()
	result := &Result{}

	err := t.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		exists, err := tx.DrinkCheckExists(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("failed to check for duplicate: %w", err)
		}
		if exists {
			return ErrDuplicateMessage
		}

		user, err := tx.GetOrCreateUser(ctx, msg.AuthorID, msg.AuthorName)
		if err != nil {
			return fmt.Errorf("failed to resolve user: %w", err)
		}

		active, err := t.resolveActiveChain(ctx, tx, now)
		if err != nil {
			return err
		}

		creditType := models.CreditChain
		if active == nil {
			active = &models.Chain{
				StarterID:           msg.AuthorID,
				StartMessageID:      msg.ID,
				LastMessageID:       msg.ID,
				LastMessageAuthorID: msg.AuthorID,
				StartTime:           now,
				LastActivity:        now,
				TotalMessages:       1,
				Active:              true,
				ServerRecord:        false,
			}
			if err := tx.CreateChain(ctx, active); err != nil {
				return fmt.Errorf("failed to create chain: %w", err)
			}
			creditType = models.CreditInitial
			result.NewChain = true
		} else {
			active.LastMessageID = msg.ID
			active.LastMessageAuthorID = msg.AuthorID
			active.TotalMessages++
			// Every continuation resets the inactivity timer, including
			// self-replies and the chain starter.
			active.LastActivity = now
			if err := tx.UpdateChain(ctx, active); err != nil {
				return fmt.Errorf("failed to update chain: %w", err)
			}
		}

		dc := &models.DrinkCheck{
			MessageID:          msg.ID,
			UserID:             msg.AuthorID,
			ChainID:            active.ID,
			IsReply:            msg.IsReply,
			RepliedToMessageID: msg.RepliedToMessageID,
			Timestamp:          now,
		}
		if err := tx.InsertDrinkCheck(ctx, dc); err != nil {
			return fmt.Errorf("failed to insert drink check: %w", err)
		}

		credit := &models.Credit{
			UserID:     msg.AuthorID,
			MessageID:  msg.ID,
			CreditType: creditType,
			Timestamp:  now,
		}
		if err := tx.InsertCredit(ctx, credit); err != nil {
			return fmt.Errorf("failed to insert credit: %w", err)
		}

		user.TotalCredits++
		if active.TotalMessages > user.LongestChainStreak {
			user.LongestChainStreak = active.TotalMessages
		}
		if err := tx.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		isRecord, err := t.checkRecord(ctx, tx, active)
		if err != nil {
			return err
		}

		result.Chain = active
		result.Credit = credit
		result.User = user
		result.NewRecord = isRecord
		result.Milestone = active.TotalMessages > 1 &&
			active.TotalMessages%config.ChainMilestoneInterval == 0
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateMessage) {
			t.seen.Add(msg.ID, struct{}{})
		}
		return nil, err
	}

	t.seen.Add(msg.ID, struct{}{})

	slog.Info("Drink check processed",
		slog.String("type", "chain"),
		slog.String("message_id", msg.ID),
		slog.String("user_id", msg.AuthorID),
		slog.Int64("chain_id", result.Chain.ID),
		slog.Int("chain_length", result.Chain.TotalMessages),
		slog.Bool("new_chain", result.NewChain),
		slog.Bool("new_record", result.NewRecord),
	)

	return result, nil
}

// resolveActiveChain returns the usable active chain, lazily expiring a
// stale one. A nil chain with nil error means there is no active chain.
func (t *Tracker) resolveActiveChain(ctx context.Context, tx Tx, now time.Time) (*models.Chain, error) {
	active, err := tx.ActiveChain(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active chain: %w", err)
	}
	if active == nil {
		return nil, nil
	}
	if active.ExpiredAt(now) {
		if err := tx.DeactivateChain(ctx, active.ID); err != nil {
			return nil, fmt.Errorf("failed to expire chain: %w", err)
		}
		slog.Debug("Chain expired",
			slog.String("type", "chain"),
			slog.Int64("chain_id", active.ID),
			slog.Time("last_activity", active.LastActivity))
		return nil, nil
	}
	return active, nil
}

// checkRecord transfers the server record flag when the chain beats the
// current holder. At most one chain carries the flag at any time.
func (t *Tracker) checkRecord(ctx context.Context, tx Tx, chain *models.Chain) (bool, error) {
	holder, err := tx.RecordHolder(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load record holder: %w", err)
	}

	holderTotal := 0
	if holder != nil {
		if holder.ID == chain.ID {
			// Growing its own record; the flag stays put.
			return false, nil
		}
		holderTotal = holder.TotalMessages
	}

	if chain.TotalMessages <= holderTotal {
		return false, nil
	}

	if holder != nil {
		if err := tx.ClearRecordFlag(ctx, holder.ID); err != nil {
			return false, fmt.Errorf("failed to clear record flag: %w", err)
		}
	}
	if err := tx.SetRecordFlag(ctx, chain.ID); err != nil {
		return false, fmt.Errorf("failed to set record flag: %w", err)
	}
	chain.ServerRecord = true
	return true, nil
}

// Reset closes the active chain without starting a new one. Used by the
// admin resetchain command.
func (t *Tracker) Reset(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var closed bool
	err := t.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		active, err := tx.ActiveChain(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active chain: %w", err)
		}
		if active == nil {
			return nil
		}
		if err := tx.DeactivateChain(ctx, active.ID); err != nil {
			return fmt.Errorf("failed to deactivate chain: %w", err)
		}
		closed = true
		return nil
	})
	return closed, err
}
