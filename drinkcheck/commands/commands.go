package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/hopsquad/drinkchain/drinkcheck/commands/admin"
)

var Commands = []discord.ApplicationCommandCreate{
	Profile,
	Leaderboard,
	Timer,
	Help,
}

func init() {
	Commands = append(Commands, admin.Commands...)
}
