package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/database/repositories"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var SetCredits = discord.SlashCommandCreate{
	Name:        "setcredits",
	Description: "Override a user's total credit count",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user whose credits to set",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "The new total credit count",
			Required:    true,
			MinValue:    intPtr(0),
		},
	},
}

func intPtr(v int) *int {
	return &v
}

// SetCreditsHandler is the administrative override path. It bypasses the
// chain state machine entirely and is the only way a total can go down.
func SetCreditsHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return requireAdmin(func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		amount := data.Int("amount")

		if err := b.UserRepository.SetTotalCredits(ctx, target.ID.String(), int64(amount)); err != nil {
			var notFound *repositories.NotFoundError
			if errors.As(err, &notFound) {
				return utils.EH.CreateErrorEmbed(e,
					fmt.Sprintf("**%s** has no drink check record to edit.", target.Username))
			}
			slog.Error("Failed to set credits",
				slog.String("type", "db"),
				slog.String("target_user_id", target.ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to update credits. Please try again later.")
		}

		slog.Info("Credits overridden by admin",
			slog.String("type", "cmd"),
			slog.String("admin_id", e.User().ID.String()),
			slog.String("target_user_id", target.ID.String()),
			slog.Int("amount", amount))

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Set **%s**'s total credits to **%d**.", target.Username, amount))
	})
}
