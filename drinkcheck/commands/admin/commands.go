package admin

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/hopsquad/drinkchain/drinkcheck/utils"
)

var Commands = []discord.ApplicationCommandCreate{
	SetCredits,
	ResetChain,
	DBTest,
}

// requireAdmin gates a handler behind the guild administrator permission.
func requireAdmin(h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		member := e.Member()
		if member == nil || !member.Permissions.Has(discord.PermissionAdministrator) {
			return utils.EH.CreateErrorEmbed(e, "You need administrator permissions to use this command.")
		}
		return h(e)
	}
}
