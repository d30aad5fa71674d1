package commands

import (
	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "View all available drink check bot commands",
}

func HelpHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		inline := false
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🍺 Drink Check Bot Commands",
				Description: "Here are all the available commands you can use!",
				Color:       config.InfoColor,
				Fields: []discord.EmbedField{
					{
						Name: "/profile [user]",
						Value: "View your drink check profile or another user's. Shows total " +
							"credits, chains started, chain participations, today's and " +
							"yesterday's counts, most active day, and longest chain streak.",
						Inline: &inline,
					},
					{
						Name: "/leaderboard",
						Value: "Top users by total drink checks, plus the server record " +
							"chain and who started it.",
						Inline: &inline,
					},
					{
						Name: "/timer",
						Value: "Status of the current chain: time remaining, who started " +
							"it, and the last participant.",
						Inline: &inline,
					},
					{
						Name: "Starting a Chain",
						Value: "Post a picture with \"drink check\" (or reply to one with a " +
							"picture) to start or join a chain. Chains expire 30 minutes " +
							"after the last drink check.",
						Inline: &inline,
					},
				},
			}},
		})
	}
}
