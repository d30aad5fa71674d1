package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
)

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "View the drink check leaderboard and the server record",
}

func LeaderboardHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.StatsQueryTimeout)
		defer cancel()

		users, err := b.Stats.TopUsers(ctx, 100)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the leaderboard. Please try again later.")
		}
		if len(users) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No drink checks have been recorded yet. Start a chain!")
		}

		record, err := b.Stats.RecordChain(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the server record. Please try again later.")
		}

		recordLine := "No server record yet."
		if record != nil {
			recordLine = fmt.Sprintf("🏅 Server record: **%d** drink checks, started by <@%s>",
				record.TotalMessages, record.StarterID)
		}

		totalPages := int(math.Ceil(float64(len(users)) / float64(config.LeaderboardPageSize)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.LeaderboardPageSize
				endIdx := min(startIdx+config.LeaderboardPageSize, len(users))

				var description strings.Builder
				for i, user := range users[startIdx:endIdx] {
					rank := startIdx + i + 1
					medal := ""
					switch rank {
					case 1:
						medal = "🥇 "
					case 2:
						medal = "🥈 "
					case 3:
						medal = "🥉 "
					}
					description.WriteString(fmt.Sprintf("%s**#%d** %s — %d credits\n",
						medal, rank, user.Username, user.TotalCredits))
				}
				description.WriteString("\n" + recordLine)

				embed.
					SetTitle("🍺 Drink Check Leaderboard").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
