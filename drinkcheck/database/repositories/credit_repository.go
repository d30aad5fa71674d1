package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck/database/models"
	"github.com/uptrace/bun"
)

type CreditRepository interface {
	DrinkCheckExists(ctx context.Context, messageID string) (bool, error)
	CountByType(ctx context.Context, discordID string) (initial int64, chain int64, err error)
	CountBetween(ctx context.Context, discordID string, from, to time.Time) (int64, error)
	MostActiveDay(ctx context.Context, discordID string, timezone string) (day string, count int64, err error)
}

type creditRepository struct {
	db *bun.DB
}

func NewCreditRepository(db *bun.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) DrinkCheckExists(ctx context.Context, messageID string) (bool, error) {
	return r.db.NewSelect().
		Model((*models.DrinkCheck)(nil)).
		Where("message_id = ?", messageID).
		Exists(ctx)
}

func (r *creditRepository) CountByType(ctx context.Context, discordID string) (int64, int64, error) {
	var rows []struct {
		CreditType models.CreditType `bun:"credit_type"`
		Count      int64             `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*models.Credit)(nil)).
		ColumnExpr("credit_type").
		ColumnExpr("COUNT(*) AS count").
		Where("user_id = ?", discordID).
		GroupExpr("credit_type").
		Scan(ctx, &rows)
	if err != nil {
		return 0, 0, err
	}

	var initial, chain int64
	for _, row := range rows {
		switch row.CreditType {
		case models.CreditInitial:
			initial = row.Count
		case models.CreditChain:
			chain = row.Count
		}
	}
	return initial, chain, nil
}

func (r *creditRepository) CountBetween(ctx context.Context, discordID string, from, to time.Time) (int64, error) {
	count, err := r.db.NewSelect().
		Model((*models.Credit)(nil)).
		Where("user_id = ?", discordID).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Count(ctx)
	return int64(count), err
}

// MostActiveDay groups the user's credits by calendar day in the given
// timezone and returns the busiest one. Day boundaries are a presentation
// concern, which is why the zone comes in as a parameter instead of being
// baked into the stored timestamps.
func (r *creditRepository) MostActiveDay(ctx context.Context, discordID string, timezone string) (string, int64, error) {
	var row struct {
		Day   string `bun:"day"`
		Count int64  `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*models.Credit)(nil)).
		ColumnExpr("TO_CHAR(timestamp AT TIME ZONE 'UTC' AT TIME ZONE ?, 'YYYY-MM-DD') AS day", timezone).
		ColumnExpr("COUNT(*) AS count").
		Where("user_id = ?", discordID).
		GroupExpr("day").
		OrderExpr("count DESC").
		Limit(1).
		Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, nil
		}
		return "", 0, err
	}
	return row.Day, row.Count, nil
}
