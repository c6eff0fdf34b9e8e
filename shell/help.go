package shell

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed helptext/usage.txt
var usageText string

var topicHelp = map[string]string{
	"new":       "new <player1> <player2>\n  Start a game. Player 1 moves first. Any game in progress is abandoned.",
	"place":     "place <player> <row> <col> <h|v> <letters>\n  Stage tiles from the player's rack, starting at row/col and running\n  across (h) or down (v). Lowercase letters are blanks. Placing again\n  replaces what was staged.",
	"submit":    "submit <player>\n  Score the staged tiles if every word they form is valid.",
	"challenge": "challenge <player>\n  Challenge the opponent's last play. A phony is taken back; a valid\n  play costs the challenger 5 points.",
	"pass":      "pass <player>\n  Give up the turn. Four passes in a row end the game.",
	"show":      "show [player]\n  Show the board as a player sees it. Defaults to the player on turn.",
	"top":       "top [n]\n  List the n highest-rated players (default 10).",
	"script":    "script <file.lua>\n  Run a Lua script. It can call wordduel_exec(line) to run a command\n  and wordduel_state(player) to get that player's view as JSON. The\n  json and http modules can be required.",
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(strings.TrimRight(usageText, "\n")), nil
	}
	if h, ok := topicHelp[cmd.args[0]]; ok {
		return msg(h), nil
	}
	return nil, fmt.Errorf("there is no help text for the topic %s", cmd.args[0])
}
