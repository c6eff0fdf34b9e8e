package shell

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

const scriptHTTPTimeout = 10 * time.Second

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("wordduel_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// Exec runs one shell command line and returns its output, or an ERROR:
// string.
func Exec(L *lua.LState) int {
	line := L.ToString(1)
	sc := getShell(L)
	cmd, err := extractFields(line)
	if err == nil && (cmd.cmd == "script" || cmd.cmd == "exit" || cmd.cmd == "bye") {
		err = errors.New(cmd.cmd + " is not available from a script")
	}
	var r *Response
	if err == nil {
		r, err = sc.execute(cmd)
	}
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-script-line")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	out := ""
	if r != nil {
		out = r.message
	}
	L.Push(lua.LString(out))
	// return number of results pushed to stack.
	return 1
}

// State returns the current game as the named player sees it, as JSON.
func State(L *lua.LState) int {
	player := L.ToString(1)
	sc := getShell(L)
	g, err := sc.curGame()
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	data, err := json.Marshal(g.GetState(player))
	if err != nil {
		log.Err(err).Msg("error-marshalling-state")
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(data))
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	L.PreloadModule("json", luajson.Loader)
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{Timeout: scriptHTTPTimeout}).Loader)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("wordduel_shell", lsc)
	L.SetGlobal("wordduel_exec", L.NewFunction(Exec))
	L.SetGlobal("wordduel_state", L.NewFunction(State))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("ran " + filepath), nil
}
