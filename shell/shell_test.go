package shell

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/config"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"analyze -top 5",
			&shellcmd{"analyze", nil, CmdOptions{"top": {"5"}}},
			nil},
		{"hand 1C 1C J",
			&shellcmd{"hand", []string{"1C", "1C", "J"}, CmdOptions{}},
			nil},
		{`load "my templates/lib.yaml" `,
			&shellcmd{"load", []string{"my templates/lib.yaml"}, CmdOptions{}},
			nil},
		{"show 1 -2",
			&shellcmd{"show", []string{"1", "-2"}, CmdOptions{}},
			nil},
		{"analyze -top",
			nil, errWrongOptionSyntax},
		{"analyze -top -json true",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func newTestShell(t *testing.T) (*ShellController, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigTemplatePath, "../testdata/library.json")
	return newHeadlessController(cfg, &buf), &buf
}

func run(t *testing.T, sc *ShellController, line string) string {
	t.Helper()
	resp, err := sc.standardModeSwitch(line, nil)
	assert.NoError(t, err, line)
	if resp == nil {
		return ""
	}
	return resp.message
}

func TestCommandsNeedState(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)

	_, err := sc.standardModeSwitch("analyze", nil)
	is.Equal(err, errNoLibrary)
	_, err = sc.standardModeSwitch("validate", nil)
	is.Equal(err, errNoLibrary)
	_, err = sc.standardModeSwitch("show 1", nil)
	is.Equal(err, errNoResults)

	run(t, sc, "load")
	_, err = sc.standardModeSwitch("analyze", nil)
	is.Equal(err, errNoHand)

	_, err = sc.standardModeSwitch("frobnicate", nil)
	is.True(err != nil)
	_, err = sc.standardModeSwitch("exit", nil)
	is.Equal(err, errQuit)
}

func TestLoadAnalyzeShow(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)

	out := run(t, sc, "load")
	is.True(strings.Contains(out, "loaded 5 templates"))
	is.True(strings.Contains(out, "placeholder"))

	out = run(t, sc, "hand 1B 1B 2B 3B 4B 5B 1C 1C 1C 1C J J F F")
	is.True(strings.HasPrefix(out, "0:1B 1:1B"))
	is.True(strings.Contains(out, "2 jokers"))

	out = run(t, sc, "analyze -top 2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	is.Equal(len(lines), 3) // header plus two rows

	out = run(t, sc, "show 1")
	is.True(strings.Contains(out, "hand indices:"))
	is.True(strings.Contains(out, "jokers used"))

	out = run(t, sc, "show 1 1")
	is.True(strings.Contains(out, "1 of"))

	_, err := sc.standardModeSwitch("show 99", nil)
	is.True(err != nil)
	_, err = sc.standardModeSwitch("show 1 99", nil)
	is.True(err != nil)
}

func TestAnalyzeJSON(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	run(t, sc, "load")
	run(t, sc, "hand 3C 3C 3C 6C 6C 6C 6C J 9C 9C 9C GD RD WD")
	out := run(t, sc, "analyze -top 1 -json true")

	var res []analyzer.TemplateMatchSummary
	is.NoErr(json.Unmarshal([]byte(out), &res))
	is.Equal(len(res), 1)
	is.Equal(res[0].TemplateID, "p3-k6-p6-k9")
}

func TestSetRebuildsAnalyzer(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)

	out := run(t, sc, "set")
	is.True(strings.Contains(out, "strategy: greedy"))

	run(t, sc, "set strategy maximum")
	is.Equal(sc.analyzer.StrategyName(), "maximum")
	is.Equal(sc.config.GetString(config.ConfigStrategy), "maximum")

	run(t, sc, "set locale sv")
	is.Equal(sc.analyzer.Locale().String(), "sv")
	is.Equal(sc.analyzer.StrategyName(), "maximum")

	_, err := sc.standardModeSwitch("set strategy flow", nil)
	is.True(err != nil)
	is.Equal(sc.analyzer.StrategyName(), "maximum")
	_, err = sc.standardModeSwitch("set colour blue", nil)
	is.True(err != nil)
}

func TestDealAndValidate(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	out := run(t, sc, "deal")
	is.True(strings.Contains(out, "(14 tiles"))
	run(t, sc, "deal 5")
	is.Equal(len(sc.hand), 5)

	run(t, sc, "load")
	out = run(t, sc, "validate")
	is.True(strings.Contains(out, "placeholder: no variations"))
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	is.True(strings.Contains(run(t, sc, "help"), "analyze [-top n]"))
	is.True(strings.Contains(run(t, sc, "help show"), "show <rank>"))
	_, err := sc.standardModeSwitch("help nope", nil)
	is.True(err != nil)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	out := run(t, sc, "script testdata/analyze.lua")
	is.True(strings.HasPrefix(out, "ran "))
	is.Equal(sc.analyzer.StrategyName(), "maximum")
	is.True(len(sc.lastResults) > 0)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	c := NewShellCompleter(sc)

	m, n := c.Do([]rune("ana"), 3)
	is.Equal(n, 3)
	is.Equal(m, [][]rune{[]rune("lyze")})

	line := []rune("set strategy ")
	m, _ = c.Do(line, len(line))
	is.Equal(len(m), 2)

	line = []rune("analyze -t")
	m, _ = c.Do(line, len(line))
	is.Equal(m, [][]rune{[]rune("op")})
}
