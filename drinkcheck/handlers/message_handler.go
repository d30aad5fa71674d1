package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/chain"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/logger"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// MessageHandler listens for guild messages and feeds qualifying drink
// checks into the chain tracker.
func MessageHandler(b *drinkcheck.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		msg := e.Message

		if msg.Author.Bot || msg.WebhookID != nil {
			return
		}
		if !isTrackedChannel(b.Cfg.Tracking.Channels, msg.ChannelID) {
			return
		}

		isReply := msg.MessageReference != nil
		if !chain.Classify(msg.Content, len(msg.Attachments) > 0, isReply) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		var repliedTo string
		if isReply && msg.MessageReference.MessageID != nil {
			repliedTo = msg.MessageReference.MessageID.String()
		}

		result, err := b.Tracker.Process(ctx, chain.Message{
			ID:                 msg.ID.String(),
			AuthorID:           msg.Author.ID.String(),
			AuthorName:         msg.Author.Username,
			ChannelID:          msg.ChannelID.String(),
			Content:            msg.Content,
			HasAttachment:      len(msg.Attachments) > 0,
			IsReply:            isReply,
			RepliedToMessageID: repliedTo,
			Timestamp:          time.Now(),
		})
		if err != nil {
			if errors.Is(err, chain.ErrDuplicateMessage) {
				slog.Debug("Skipping redelivered message",
					slog.String("type", "chain"),
					slog.String("message_id", msg.ID.String()))
				return
			}
			logger.LogError("Failed to process drink check", err,
				slog.String("message_id", msg.ID.String()))
			return
		}

		if err := e.Client().Rest().AddReaction(msg.ChannelID, msg.ID, config.CreditReaction); err != nil {
			slog.Warn("Failed to add credit reaction",
				slog.String("type", "chain"),
				slog.String("message_id", msg.ID.String()),
				slog.Any("error", err))
		}

		announce(e, result)
	})
}

func isTrackedChannel(tracked []snowflake.ID, channelID snowflake.ID) bool {
	if len(tracked) == 0 {
		return true
	}
	for _, id := range tracked {
		if id == channelID {
			return true
		}
	}
	return false
}

// announce posts the chain-started, milestone, and record notices. These
// are presentation only; the state machine has already committed.
func announce(e *events.MessageCreate, result *chain.Result) {
	var embed *discord.Embed

	switch {
	case result.NewRecord:
		embed = &discord.Embed{
			Title: "🏅 New Server Record!",
			Description: fmt.Sprintf("The current chain just hit **%d** drink checks — a new all-time record!",
				result.Chain.TotalMessages),
			Color: config.RecordColor,
		}
	case result.NewChain:
		embed = &discord.Embed{
			Title: "🍺 Drink Check Chain Started!",
			Description: fmt.Sprintf("<@%s> started a chain. Post a drink check within 30 minutes to keep it alive!",
				result.Chain.StarterID),
			Color: config.SuccessColor,
		}
	case result.Milestone:
		embed = &discord.Embed{
			Title: "⛓️ Chain Milestone",
			Description: fmt.Sprintf("The chain is **%d** drink checks strong!",
				result.Chain.TotalMessages),
			Color: config.InfoColor,
		}
	default:
		return
	}

	if _, err := e.Client().Rest().CreateMessage(e.Message.ChannelID, discord.MessageCreate{
		Embeds: []discord.Embed{*embed},
	}); err != nil {
		slog.Warn("Failed to post chain notice",
			slog.String("type", "chain"),
			slog.Any("error", err))
	}
}
