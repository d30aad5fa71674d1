package config

import "time"

// UI and display constants
const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
	RecordColor       = 0xFFD700

	LeaderboardPageSize = 10
)

// Database and performance constants
const (
	DefaultQueryTimeout     = 30 * time.Second
	StatsQueryTimeout       = 10 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	NetworkDialTimeout      = 5 * time.Second
)

// Chain mechanics constants
const (
	// ChainMilestoneInterval controls how often a milestone notice is
	// broadcast as a chain grows.
	ChainMilestoneInterval = 5

	// RecentMessageCacheSize bounds the in-process LRU of already-processed
	// message IDs used to short-circuit gateway redeliveries.
	RecentMessageCacheSize = 4096

	// CreditReaction is added to every message that earns a credit.
	CreditReaction = "🍺"
)
