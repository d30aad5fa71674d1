package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/hopsquad/drinkchain/drinkcheck"
	"github.com/hopsquad/drinkchain/drinkcheck/config"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var DBTest = discord.SlashCommandCreate{
	Name:        "dbtest",
	Description: "Test database connectivity and latency",
}

func DBTestHandler(b *drinkcheck.Bot) handler.CommandHandler {
	return requireAdmin(func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.NetworkDialTimeout)
		defer cancel()

		latency, err := b.DB.Ping(ctx)
		if err != nil {
			return utils.EH.CreateError(e, "Database Unreachable", err.Error())
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Database is reachable. Round-trip latency: **%s**", latency.Round(100*time.Microsecond)))
	})
}
