package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User accumulates drink check credits. Rows are never deleted; totals only
// move down through admin overrides.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                 int64  `bun:"id,pk,autoincrement"`
	DiscordID          string `bun:"discord_id,notnull,unique"`
	Username           string `bun:"username,notnull"`
	TotalCredits       int64  `bun:"total_credits,notnull,default:0"`
	LongestChainStreak int    `bun:"longest_chain_streak,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
