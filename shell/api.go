package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/wordduel/board"
	"github.com/domino14/wordduel/lobby"
)

const defaultTopPlayers = 10

// Board coordinates are the single hex digits shown on the board edges.
func parseCoord(s string) (int, error) {
	n, err := strconv.ParseInt(s, 16, 0)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate %q", s)
	}
	return int(n), nil
}

func (sc *ShellController) handle(in lobby.Intent) error {
	return sc.lobby.Handle(context.Background(), in)
}

// seated checks that a command names a player of the current game.
func (sc *ShellController) seated(cmd *shellcmd, usage string) (string, error) {
	if len(cmd.args) == 0 {
		return "", errors.New("usage: " + usage)
	}
	if _, err := sc.curGame(); err != nil {
		return "", err
	}
	for _, p := range sc.players {
		if p == cmd.args[0] {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s is not playing; players are %s", cmd.args[0], strings.Join(sc.players, " and "))
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: new <player1> <player2>")
	}
	p1, p2 := cmd.args[0], cmd.args[1]
	if p1 == p2 {
		return nil, errors.New("players need different names")
	}
	// Leaving the previous game abandons it.
	for _, p := range sc.players {
		sc.lobby.Disconnect(p)
	}
	sc.players, sc.gameID = nil, ""

	id, err := sc.lobby.CreateGame(p1, p1)
	if err != nil {
		return nil, err
	}
	if err := sc.lobby.JoinGame(p2, p2, id); err != nil {
		sc.lobby.Disconnect(p1)
		return nil, err
	}
	sc.gameID = id
	sc.players = []string{p1, p2}
	g, _ := sc.curGame()
	return msg(fmt.Sprintf("Game %s started. %s moves first.\n\n%s", id, p1, g.DisplayFor(p1))), nil
}

func (sc *ShellController) place(cmd *shellcmd) (*Response, error) {
	const usage = "place <player> <row> <col> <h|v> <letters>"
	player, err := sc.seated(cmd, usage)
	if err != nil {
		return nil, err
	}
	if len(cmd.args) != 5 {
		return nil, errors.New("usage: " + usage)
	}
	row, err := parseCoord(cmd.args[1])
	if err != nil {
		return nil, err
	}
	col, err := parseCoord(cmd.args[2])
	if err != nil {
		return nil, err
	}
	var dr, dc int
	switch strings.ToLower(cmd.args[3]) {
	case "h":
		dc = 1
	case "v":
		dr = 1
	default:
		return nil, errors.New("direction must be h or v")
	}
	var tiles []board.Placement
	for i, l := range []rune(cmd.args[4]) {
		tiles = append(tiles, board.Placement{Row: row + i*dr, Col: col + i*dc, Letter: l})
	}
	if err := sc.handle(lobby.Intent{Type: lobby.IntentPlaceTiles, PlayerID: player, Tiles: tiles}); err != nil {
		return nil, err
	}
	g, _ := sc.curGame()
	return msg(g.DisplayFor(player)), nil
}

func (sc *ShellController) submit(cmd *shellcmd) (*Response, error) {
	player, err := sc.seated(cmd, "submit <player>")
	if err != nil {
		return nil, err
	}
	return nil, sc.handle(lobby.Intent{Type: lobby.IntentSubmitWord, PlayerID: player})
}

func (sc *ShellController) challenge(cmd *shellcmd) (*Response, error) {
	player, err := sc.seated(cmd, "challenge <player>")
	if err != nil {
		return nil, err
	}
	return nil, sc.handle(lobby.Intent{Type: lobby.IntentChallengeWord, PlayerID: player})
}

func (sc *ShellController) pass(cmd *shellcmd) (*Response, error) {
	player, err := sc.seated(cmd, "pass <player>")
	if err != nil {
		return nil, err
	}
	return nil, sc.handle(lobby.Intent{Type: lobby.IntentPassTurn, PlayerID: player})
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	g, err := sc.curGame()
	if err != nil {
		return nil, err
	}
	viewer := g.PlayerOnTurn()
	if len(cmd.args) > 0 {
		if viewer, err = sc.seated(cmd, "show [player]"); err != nil {
			return nil, err
		}
	}
	return msg(g.DisplayFor(viewer)), nil
}

func (sc *ShellController) top(cmd *shellcmd) (*Response, error) {
	if sc.ratings == nil {
		return nil, errors.New("ratings are not available")
	}
	n := defaultTopPlayers
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil || n <= 0 {
			return nil, errors.New("usage: top [n]")
		}
	}
	entries := sc.ratings.TopPlayers(n)
	if len(entries) == 0 {
		return msg("No rated games yet."), nil
	}
	var sb strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&sb, "%3d. %-20s %5d  %d-%d\n", i+1, e.PlayerID, e.Rating, e.Wins, e.Losses)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}
