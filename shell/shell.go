package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/deck"
	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoLibrary         = errors.New("please load a template library first with the `load` command")
	errNoHand            = errors.New("please set a hand first with `hand` or `deal`")
	errNoResults         = errors.New("please run `analyze` first")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l        *readline.Instance
	config   *config.Config
	execPath string
	version  string

	lib         *template.Library
	libPath     string
	fingerprint uint64

	hand        tile.Hand
	deck        *deck.Deck
	analyzer    *analyzer.Analyzer
	lastResults []analyzer.TemplateMatchSummary

	// out is where command output goes when there is no readline instance,
	// as when commands run from a script or a test.
	out io.Writer
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController creates a shell. The analyzer is built from the
// config's strategy and locale; a bad value falls back to the defaults with
// a warning.
func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	prompt := "handmatch"
	sc := &ShellController{
		config:   cfg,
		execPath: execPath,
		version:  gitVersion,
		deck:     deck.New(nil),
		out:      os.Stderr,
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32m" + prompt + ">\033[0m ",
		HistoryFile:     "/tmp/handmatch_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	sc.initAnalyzer()
	return sc
}

// newHeadlessController is a shell with no terminal attached. Output goes to
// w.
func newHeadlessController(cfg *config.Config, w io.Writer) *ShellController {
	sc := &ShellController{config: cfg, deck: deck.New(nil), out: w}
	sc.initAnalyzer()
	return sc
}

func (sc *ShellController) initAnalyzer() {
	a, err := sc.buildAnalyzer(sc.config.GetString(config.ConfigStrategy),
		sc.config.GetString(config.ConfigLocale))
	if err != nil {
		log.Warn().Err(err).Msg("bad-analyzer-settings-using-defaults")
		a = analyzer.Default()
	}
	sc.analyzer = a
}

func (sc *ShellController) buildAnalyzer(strategy, locale string) (*analyzer.Analyzer, error) {
	s, err := matcher.StrategyFromName(strategy)
	if err != nil {
		return nil, err
	}
	return analyzer.New(analyzer.Options{
		Strategy: s,
		Locale:   locale,
		Threads:  sc.config.GetInt(config.ConfigThreads),
	})
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
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
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	// handle options

	lastWasOption := false
	lastOption := ""
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && !isNumber(fields[idx]) {
			// option
			if lastWasOption {
				return nil, errWrongOptionSyntax
			}
			lastWasOption = true
			lastOption = fields[idx][1:]
			continue
		}
		if lastWasOption {
			lastWasOption = false
			options[lastOption] = append(options[lastOption], fields[idx])
		} else {
			args = append(args, fields[idx])
		}
	}
	if lastWasOption {
		// all options are non-boolean, cannot have a naked option.
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "load":
		return sc.load(cmd)
	case "hand":
		return sc.setHand(cmd)
	case "deal":
		return sc.deal(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "show":
		return sc.show(cmd)
	case "set":
		return sc.set(cmd)
	case "validate":
		return sc.validate(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unrecognized command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command line, as given on the command line of the
// binary, and prints its output.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil {
		sc.showMessage(resp.message)
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
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup releases anything the shell holds open.
func (sc *ShellController) Cleanup() {
	log.Info().Msg("shell-cleanup")
}
