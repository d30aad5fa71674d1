package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DrinkCheck is one qualifying message. The message ID is the primary key
// and doubles as the idempotency key: a redelivered message can never insert
// a second row.
type DrinkCheck struct {
	bun.BaseModel `bun:"table:drink_checks,alias:dc"`

	MessageID          string    `bun:"message_id,pk"`
	UserID             string    `bun:"user_id,notnull"`
	ChainID            int64     `bun:"chain_id,notnull"`
	IsReply            bool      `bun:"is_reply,notnull,default:false"`
	RepliedToMessageID string    `bun:"replied_to_message_id,nullzero"`
	Timestamp          time.Time `bun:"timestamp,notnull"`
}
