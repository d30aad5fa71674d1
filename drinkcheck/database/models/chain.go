package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ChainWindow is the inactivity threshold after which an active chain is
// considered expired.
const ChainWindow = 30 * time.Minute

// Chain is one burst of consecutive drink checks. At most one row may have
// active = true, and at most one row may have server_record = true; both are
// backed by partial unique indexes created in database.InitializeSchema.
type Chain struct {
	bun.BaseModel `bun:"table:chains,alias:ch"`

	ID                  int64     `bun:"id,pk,autoincrement"`
	StarterID           string    `bun:"starter_id,notnull"`
	StartMessageID      string    `bun:"start_message_id,notnull,unique"`
	LastMessageID       string    `bun:"last_message_id,notnull"`
	LastMessageAuthorID string    `bun:"last_message_author_id,notnull"`
	StartTime           time.Time `bun:"start_time,notnull"`
	LastActivity        time.Time `bun:"last_activity,notnull"`
	TotalMessages       int       `bun:"total_messages,notnull,default:1"`
	Active              bool      `bun:"active,notnull,default:true"`
	ServerRecord        bool      `bun:"server_record,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ExpiredAt reports whether the chain has gone stale as of now. Expiry is
// lazy: the flag stays true in storage until the next observation flips it.
func (c *Chain) ExpiredAt(now time.Time) bool {
	if !c.Active {
		return true
	}
	return now.Sub(c.LastActivity) >= ChainWindow
}

// RemainingAt returns how long the chain has left before expiring.
func (c *Chain) RemainingAt(now time.Time) time.Duration {
	remaining := ChainWindow - now.Sub(c.LastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}
