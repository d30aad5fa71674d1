package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/services"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Timer = discord.SlashCommandCreate{
	Name:        "timer",
	Description: "Check the status of the current drink check chain",
}

func TimerHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.StatsQueryTimeout)
		defer cancel()

		active, remaining, err := b.Stats.CurrentChain(ctx)
		if err != nil {
			if errors.Is(err, services.ErrNoActiveChain) {
				return utils.EH.CreateInfoEmbed(e,
					"No active chain right now. Post a drink check to start one!")
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to check the chain. Please try again later.")
		}

		inline := true
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "⏰ Chain Timer",
				Color: config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "Time Remaining", Value: utils.FormatRemaining(remaining), Inline: &inline},
					{Name: "Chain Length", Value: fmt.Sprintf("%d", active.TotalMessages), Inline: &inline},
					{Name: "Started By", Value: fmt.Sprintf("<@%s>", active.StarterID), Inline: &inline},
					{Name: "Last Participant", Value: fmt.Sprintf("<@%s>", active.LastMessageAuthorID), Inline: &inline},
				},
				Footer: &discord.EmbedFooter{
					Text: "Chains expire after 30 minutes without a drink check",
				},
			}},
		})
	}
}
