// Package shell is a terminal front end for playing a local game, both
// seats at one keyboard.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordduel/config"
	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/game"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/lobby"
	"github.com/domino14/wordduel/rating"
)

var (
	errNoData   = errors.New("no data in line")
	errNoGame   = errors.New("no game yet; start one with `new`")
	errQuitting = errors.New("sending quit signal")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	outMu sync.Mutex
	out   io.Writer

	lobby   *lobby.Manager
	ratings *rating.Store
	gameID  string
	players []string
}

type shellcmd struct {
	cmd  string
	args []string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// NewShellController sets up readline on the terminal and a lobby that
// prints game events as they happen.
func NewShellController(cfg *config.Config, lex lexicon.Lexicon, ratings *rating.Store) (*ShellController, error) {
	sc := newController(cfg, lex, ratings, os.Stdout)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mwordduel>\033[0m ",
		HistoryFile:     "/tmp/wordduel_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stdout()
	return sc, nil
}

func newController(cfg *config.Config, lex lexicon.Lexicon, ratings *rating.Store, out io.Writer) *ShellController {
	sc := &ShellController{config: cfg, out: out, ratings: ratings}
	sc.lobby = lobby.NewManager(lobby.Options{
		Lexicon:      lex,
		Events:       events.SinkFunc(sc.printEvent),
		Ratings:      ratings,
		TimeBudget:   cfg.GetDuration(config.ConfigTimeBudget),
		TickInterval: cfg.GetDuration(config.ConfigTickInterval),
	})
	return sc
}

func (sc *ShellController) showMessage(m string) {
	sc.outMu.Lock()
	defer sc.outMu.Unlock()
	io.WriteString(sc.out, m)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	return &shellcmd{cmd: strings.ToLower(fields[0]), args: fields[1:]}, nil
}

func (sc *ShellController) curGame() (*game.Game, error) {
	if sc.gameID == "" {
		return nil, errNoGame
	}
	g := sc.lobby.Game(sc.gameID)
	if g == nil {
		return nil, errNoGame
	}
	return g, nil
}

// printEvent narrates the events worth seeing at a shared terminal. Errors
// and per-player snapshots are left out; commands report their own errors.
func (sc *ShellController) printEvent(e events.Event) {
	switch p := e.Payload.(type) {
	case events.TurnChangedPayload:
		sc.showMessage(fmt.Sprintf("%s to move.", p.CurrentPlayerName))
	case events.WordValidatedPayload:
		if p.Valid {
			sc.showMessage(fmt.Sprintf("%s played %s for %d.", p.PlayerID, strings.Join(p.Words, ", "), p.Score))
		}
	case events.ChallengeResultPayload:
		sc.showMessage(p.Message)
	case events.PlayerPassedPayload:
		sc.showMessage(fmt.Sprintf("%s passed.", p.PlayerName))
	case events.GameOverPayload:
		sc.showMessage(gameOverText(p))
	}
}

func gameOverText(p events.GameOverPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game over (%s). ", p.Reason)
	if p.Winner == nil {
		sb.WriteString("It's a draw.")
	} else {
		fmt.Fprintf(&sb, "%s wins.", p.Winner.Name)
	}
	for _, s := range p.FinalScores {
		fmt.Fprintf(&sb, "\n  %-20s %4d", s.Name, s.Score)
	}
	for _, rc := range p.RatingChanges {
		fmt.Fprintf(&sb, "\n  %s: %d -> %d (%+d)", rc.PlayerID, rc.OldRating, rc.NewRating, rc.Change)
	}
	return sb.String()
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) error {
	cmd, err := extractFields(line)
	if err != nil {
		if err != errNoData {
			sc.showError(err)
		}
		return nil
	}
	resp, err := sc.execute(cmd)
	if err == errQuitting {
		sig <- syscall.SIGINT
		return err
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) execute(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "place":
		return sc.place(cmd)
	case "submit":
		return sc.submit(cmd)
	case "challenge":
		return sc.challenge(cmd)
	case "pass":
		return sc.pass(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "top":
		return sc.top(cmd)
	case "script":
		return sc.script(cmd)
	case "help":
		return sc.help(cmd)
	case "exit", "bye":
		return nil, errQuitting
	default:
		log.Debug().Msgf("you said: %q", cmd.cmd)
		return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command line, as given on the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if err := sc.standardModeSwitch(line, sig); err != nil {
		log.Error().Err(err).Msg("")
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.standardModeSwitch(line, sig); err != nil {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup abandons any running game and flushes ratings.
func (sc *ShellController) Cleanup() {
	sc.lobby.Close()
	if sc.ratings != nil {
		if err := sc.ratings.Close(); err != nil {
			log.Err(err).Msg("closing-ratings")
		}
	}
}
