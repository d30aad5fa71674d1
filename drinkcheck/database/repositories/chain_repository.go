package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck/database/models"
	"github.com/uptrace/bun"
)

type ChainRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Chain, error)
	GetActive(ctx context.Context) (*models.Chain, error)
	GetRecordHolder(ctx context.Context) (*models.Chain, error)
	Deactivate(ctx context.Context, id int64) error
}

type chainRepository struct {
	db *bun.DB
	*BaseRepository
}

func NewChainRepository(db *bun.DB) ChainRepository {
	return &chainRepository{db: db, BaseRepository: NewBaseRepository(db)}
}

func (r *chainRepository) GetByID(ctx context.Context, id int64) (*models.Chain, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	chain := new(models.Chain)
	err := r.db.NewSelect().
		Model(chain).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("GetByID", "chain", id, err)
	}
	return chain, nil
}

// GetActive returns the chain currently flagged active, or nil if there is
// none. It does not apply the expiry rule; callers decide whether a stale
// chain still counts.
func (r *chainRepository) GetActive(ctx context.Context) (*models.Chain, error) {
	chain := new(models.Chain)
	err := r.db.NewSelect().
		Model(chain).
		Where("active = true").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return chain, nil
}

func (r *chainRepository) GetRecordHolder(ctx context.Context) (*models.Chain, error) {
	chain := new(models.Chain)
	err := r.db.NewSelect().
		Model(chain).
		Where("server_record = true").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return chain, nil
}

func (r *chainRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Chain)(nil)).
		Set("active = false").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
