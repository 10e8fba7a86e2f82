package shell

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("handmatch_shell")
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

func Set(L *lua.LState) int {
	lv := L.ToString(1)
	sc := getShell(L)
	r, err := sc.set(&shellcmd{
		cmd:  "set",
		args: strings.Fields(lv),
	})
	if err != nil {
		log.Err(err).Msg("error-executing-set")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	// return number of results pushed to stack.
	return 1
}

func Load(L *lua.LState) int {
	lv := L.ToString(1)
	sc := getShell(L)
	cmd := &shellcmd{cmd: "load"}
	if lv != "" {
		cmd.args = []string{lv}
	}
	r, err := sc.load(cmd)
	if err != nil {
		log.Err(err).Msg("error-executing-load")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

func Hand(L *lua.LState) int {
	lv := L.ToString(1)
	sc := getShell(L)
	r, err := sc.setHand(&shellcmd{
		cmd:  "hand",
		args: strings.Fields(lv),
	})
	if err != nil {
		log.Err(err).Msg("error-executing-hand")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

// Analyze returns the results as JSON text, or nil on error.
func Analyze(L *lua.LState) int {
	top := L.OptInt(1, 0)
	sc := getShell(L)
	r, err := sc.analyze(&shellcmd{
		cmd: "analyze",
		options: CmdOptions{
			"top":  []string{strconv.Itoa(top)},
			"json": []string{"true"},
		},
	})
	if err != nil {
		log.Err(err).Msg("error-executing-analyze")
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("handmatch_shell", lsc)
	L.SetGlobal("handmatch_load", L.NewFunction(Load))
	L.SetGlobal("handmatch_hand", L.NewFunction(Hand))
	L.SetGlobal("handmatch_analyze", L.NewFunction(Analyze))
	L.SetGlobal("handmatch_set", L.NewFunction(Set))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("ran " + filepath), nil
}
