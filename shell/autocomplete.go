package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter completes command names and, where a command takes one,
// the names of the seated players.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

var commandNames = []string{
	"new", "place", "submit", "challenge", "pass", "show", "top", "script", "help", "exit",
}

var takesPlayer = map[string]bool{
	"place": true, "submit": true, "challenge": true, "pass": true, "show": true,
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var candidates []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !endsWithSpace):
		if len(fields) == 1 {
			prefix = fields[0]
		}
		candidates = commandNames
	case takesPlayer[fields[0]] && (len(fields) == 1 || (len(fields) == 2 && !endsWithSpace)):
		if len(fields) == 2 {
			prefix = fields[1]
		}
		candidates = c.sc.players
	case fields[0] == "help" && (len(fields) == 1 || (len(fields) == 2 && !endsWithSpace)):
		if len(fields) == 2 {
			prefix = fields[1]
		}
		candidates = commandNames
	}

	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]+" "))
		}
	}
	return out, len([]rune(prefix))
}
