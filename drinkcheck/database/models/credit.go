package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CreditType is the closed set of credit kinds.
type CreditType string

const (
	// CreditInitial is awarded to the message that opens a chain.
	CreditInitial CreditType = "initial"
	// CreditChain is awarded to every continuation message.
	CreditChain CreditType = "chain"
)

// Credit is one unit of reward, 1:1 with a DrinkCheck row.
type Credit struct {
	bun.BaseModel `bun:"table:credits,alias:cr"`

	ID         int64      `bun:"id,pk,autoincrement"`
	UserID     string     `bun:"user_id,notnull"`
	MessageID  string     `bun:"message_id,notnull"`
	CreditType CreditType `bun:"credit_type,notnull"`
	Timestamp  time.Time  `bun:"timestamp,notnull"`
}
