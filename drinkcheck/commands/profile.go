package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/database/repositories"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Profile = discord.SlashCommandCreate{
	Name:        "profile",
	Description: "View your drink check profile or another user's",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to look up (defaults to you)",
			Required:    false,
		},
	},
}

func ProfileHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.StatsQueryTimeout)
		defer cancel()

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}

		stats, err := b.Stats.UserStats(ctx, target.ID.String())
		if err != nil {
			var notFound *repositories.NotFoundError
			if errors.As(err, &notFound) || errors.Is(err, sql.ErrNoRows) {
				return utils.EH.CreateInfoEmbed(e,
					fmt.Sprintf("**%s** hasn't posted a drink check yet.", target.Username))
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to load profile. Please try again later.")
		}

		inline := true
		embed := discord.Embed{
			Title: fmt.Sprintf("🍺 %s's Drink Check Profile", stats.User.Username),
			Color: config.EmbedDefaultColor,
			Fields: []discord.EmbedField{
				{Name: "Total Credits", Value: fmt.Sprintf("%d", stats.User.TotalCredits), Inline: &inline},
				{Name: "Chains Started", Value: fmt.Sprintf("%d", stats.InitialCredits), Inline: &inline},
				{Name: "Chain Participations", Value: fmt.Sprintf("%d", stats.ChainCredits), Inline: &inline},
				{Name: "Today", Value: fmt.Sprintf("%d", stats.TodayCount), Inline: &inline},
				{Name: "Yesterday", Value: fmt.Sprintf("%d", stats.YesterdayCount), Inline: &inline},
				{Name: "Longest Chain Streak", Value: fmt.Sprintf("%d", stats.User.LongestChainStreak), Inline: &inline},
			},
		}
		if stats.MostActiveDay != "" {
			embed.Fields = append(embed.Fields, discord.EmbedField{
				Name:   "Most Active Day",
				Value:  fmt.Sprintf("%s (%d drink checks)", stats.MostActiveDay, stats.MostActiveDayN),
				Inline: &inline,
			})
		}

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}
