package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck/chain"
	"github.com/hopsquad/drinkchain/drinkcheck/database/models"
	"github.com/uptrace/bun"
)

// TxStore is the bun-backed persistence gateway for the chain tracker.
// RunInTx wraps the whole message-processing sequence in one transaction;
// every Tx method below operates on that transaction, never on the bare DB.
type TxStore struct {
	db *bun.DB
}

func NewTxStore(db *bun.DB) *TxStore {
	return &TxStore{db: db}
}

func (s *TxStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx chain.Tx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &txGateway{tx: tx})
	})
}

type txGateway struct {
	tx bun.Tx
}

func (g *txGateway) GetOrCreateUser(ctx context.Context, discordID, username string) (*models.User, error) {
	user := new(models.User)
	err := g.tx.NewSelect().
		Model(user).
		Where("discord_id = ?", discordID).
		Scan(ctx)
	if err == nil {
		// Display names drift; keep the cached copy fresh, best-effort.
		if username != "" && user.Username != username {
			user.Username = username
		}
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	user = &models.User{
		DiscordID: discordID,
		Username:  username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := g.tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (g *txGateway) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := g.tx.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	return err
}

func (g *txGateway) ActiveChain(ctx context.Context) (*models.Chain, error) {
	c := new(models.Chain)
	err := g.tx.NewSelect().
		Model(c).
		Where("active = true").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (g *txGateway) CreateChain(ctx context.Context, c *models.Chain) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	_, err := g.tx.NewInsert().Model(c).Exec(ctx)
	return err
}

func (g *txGateway) UpdateChain(ctx context.Context, c *models.Chain) error {
	c.UpdatedAt = time.Now()
	_, err := g.tx.NewUpdate().
		Model(c).
		WherePK().
		Exec(ctx)
	return err
}

func (g *txGateway) DeactivateChain(ctx context.Context, id int64) error {
	_, err := g.tx.NewUpdate().
		Model((*models.Chain)(nil)).
		Set("active = false").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (g *txGateway) DrinkCheckExists(ctx context.Context, messageID string) (bool, error) {
	return g.tx.NewSelect().
		Model((*models.DrinkCheck)(nil)).
		Where("message_id = ?", messageID).
		Exists(ctx)
}

func (g *txGateway) InsertDrinkCheck(ctx context.Context, dc *models.DrinkCheck) error {
	_, err := g.tx.NewInsert().Model(dc).Exec(ctx)
	return err
}

func (g *txGateway) InsertCredit(ctx context.Context, credit *models.Credit) error {
	_, err := g.tx.NewInsert().Model(credit).Exec(ctx)
	return err
}

func (g *txGateway) RecordHolder(ctx context.Context) (*models.Chain, error) {
	c := new(models.Chain)
	err := g.tx.NewSelect().
		Model(c).
		Where("server_record = true").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (g *txGateway) ClearRecordFlag(ctx context.Context, id int64) error {
	_, err := g.tx.NewUpdate().
		Model((*models.Chain)(nil)).
		Set("server_record = false").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (g *txGateway) SetRecordFlag(ctx context.Context, id int64) error {
	_, err := g.tx.NewUpdate().
		Model((*models.Chain)(nil)).
		Set("server_record = true").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
