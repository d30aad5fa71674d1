package admin

import (
	"context"
	"log/slog"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var ResetChain = discord.SlashCommandCreate{
	Name:        "resetchain",
	Description: "Close the active drink check chain immediately",
}

func ResetChainHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return requireAdmin(func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		closed, err := b.Tracker.Reset(ctx)
		if err != nil {
			slog.Error("Failed to reset chain",
				slog.String("type", "chain"),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to reset the chain. Please try again later.")
		}
		if !closed {
			return utils.EH.CreateInfoEmbed(e, "There is no active chain to reset.")
		}

		slog.Info("Chain reset by admin",
			slog.String("type", "chain"),
			slog.String("admin_id", e.User().ID.String()))

		return utils.EH.CreateSuccessEmbed(e, "The active chain has been closed.")
	})
}
