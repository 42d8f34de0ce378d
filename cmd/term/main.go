// Command term is the CLI host wrapper around the go-termcore library: it
// parses the flag surface spec §6 names, spawns the child process on a
// pty (creack/pty, grounded on daisied-aln/javanhut-RavenTerminal), puts
// the host's stdin into raw mode (golang.org/x/term) so keystrokes reach
// the keyboard dispatcher unmolested, and pumps bytes between the pty and
// the terminal core. It does not own a GUI surface — spec §1 explicitly
// treats the window/message loop and rendering as external collaborators,
// so this host is a conformance/debugging shell, not the full emulator.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	xterm "golang.org/x/term"

	term "github.com/danielgatis/go-termcore"
	"github.com/danielgatis/go-termcore/internal/log"
)

type cliOptions struct {
	config      string
	loadConfig  string
	exec        string
	hold        string
	position    string
	size        string
	title       string
	titleLocked string
	window      string
	icon        string
	logFile     string
	option      []string
	border      string
	report      string
	daemon      bool

	// xterm-compatibility aliases
	fg, bg, cr, selfg, selbg, fn string
	fs                           int
	geometry                    string
	en                          string
	lf                          string
	sl                          int
}

func main() {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:     "term [-- command [args...]]",
		Short:   "headless go-termcore CLI host",
		Version: "1.0.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	flags := root.Flags()
	// Long-form spellings some xterm launch scripts use for the compat
	// aliases below.
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "font":
			name = "fn"
		case "fontsize":
			name = "fs"
		case "saveLines":
			name = "sl"
		}
		return pflag.NormalizedName(name)
	})
	flags.StringVarP(&opts.config, "config", "c", "", "load a named configuration section")
	flags.StringVarP(&opts.loadConfig, "loadconfig", "C", "", "load configuration from FILE")
	flags.StringVarP(&opts.exec, "exec", "e", "", "command to execute instead of the default shell")
	flags.StringVarP(&opts.hold, "hold", "h", "error", "never|start|error|always: whether to keep the window open after the child exits")
	flags.StringVarP(&opts.position, "position", "p", "", "X,Y|center|left|right|top|bottom|@N")
	flags.StringVarP(&opts.size, "size", "s", "", "COLS,ROWS|maxwidth|maxheight")
	flags.StringVarP(&opts.title, "title", "t", "", "initial window title")
	flags.StringVarP(&opts.titleLocked, "Title", "T", "", "window title, locked against OSC changes")
	flags.StringVarP(&opts.window, "window", "w", "normal", "normal|min|max|full|hide")
	flags.StringVarP(&opts.icon, "icon", "i", "", "FILE[,IX]")
	flags.StringVarP(&opts.logFile, "log", "l", "", "FILE|- (stderr)")
	flags.StringArrayVarP(&opts.option, "option", "o", nil, "OPT=VAL, repeatable")
	flags.StringVarP(&opts.border, "Border", "B", "frame", "frame|void")
	flags.StringVarP(&opts.report, "Report", "R", "", "s|o|m|p|P: report and exit")
	flags.BoolVarP(&opts.daemon, "daemon", "D", false, "fork into the background")

	flags.StringVar(&opts.fg, "fg", "", "xterm-compat: foreground color")
	flags.StringVar(&opts.bg, "bg", "", "xterm-compat: background color")
	flags.StringVar(&opts.cr, "cr", "", "xterm-compat: cursor color")
	flags.StringVar(&opts.selfg, "selfg", "", "xterm-compat: selection foreground")
	flags.StringVar(&opts.selbg, "selbg", "", "xterm-compat: selection background")
	flags.StringVar(&opts.fn, "fn", "", "xterm-compat: font name")
	flags.IntVar(&opts.fs, "fs", 0, "xterm-compat: font size")
	flags.StringVar(&opts.geometry, "geometry", "", "xterm-compat: COLSxROWS+X+Y")
	flags.StringVar(&opts.en, "en", "", "xterm-compat: locale/encoding")
	flags.StringVar(&opts.lf, "lf", "", "xterm-compat: log file")
	flags.IntVar(&opts.sl, "sl", 0, "xterm-compat: scrollback lines")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts *cliOptions, args []string) error {
	logger := log.Default()
	if opts.logFile != "" && opts.logFile != "-" {
		l, closeFn, err := log.NewFile(opts.logFile, "info")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer closeFn()
		log.SetDefault(l)
		logger = l
	}

	cfg := term.DefaultConfiguration()
	if opts.loadConfig != "" {
		loaded, err := term.LoadConfiguration(opts.loadConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	for _, kv := range opts.option {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid -o value %q, want OPT=VAL", kv)
		}
		if err := cfg.SetOption(parts[0], parts[1]); err != nil {
			return err
		}
	}
	if opts.size != "" {
		if cols, rows, ok := parseSize(opts.size); ok {
			cfg.Cols, cfg.Rows = cols, rows
		}
	}
	if opts.sl > 0 {
		cfg.ScrollbackLines = opts.sl
	}

	t := term.New(cfg.Options()...)
	if cfg.Answerback != "" {
		t.SetAnswerback(cfg.Answerback)
	}
	if len(cfg.SuppressSGR)+len(cfg.SuppressDEC)+len(cfg.SuppressOSC) > 0 {
		t.SetMiddleware(term.SuppressionMiddleware(cfg))
	}

	shell := opts.exec
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	var cmdArgs []string
	if len(args) > 0 {
		shell = args[0]
		cmdArgs = args[1:]
	}

	child := exec.Command(shell, cmdArgs...)
	child.Env = append(os.Environ(), "TERM="+cfg.Term)

	ptmx, err := pty.StartWithSize(child, &pty.Winsize{Rows: uint16(cfg.Rows), Cols: uint16(cfg.Cols)})
	if err != nil {
		return fmt.Errorf("spawn child: %w", err)
	}
	defer ptmx.Close()

	logger.Info("child spawned", "shell", shell, "rows", cfg.Rows, "cols", cfg.Cols)

	if xterm.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := xterm.MakeRaw(int(os.Stdin.Fd()))
		if err == nil {
			defer xterm.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	done := make(chan struct{})
	go pumpPtyToCore(ptmx, t, done)
	go pumpStdinToPty(os.Stdin, t, ptmx)

	<-done

	err = child.Wait()
	return holdOrExit(opts.hold, err)
}

// pumpPtyToCore reads child output and feeds it to the terminal core.
func pumpPtyToCore(r io.Reader, t *term.Terminal, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = t.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// pumpStdinToPty forwards raw host stdin bytes to the child. The keyboard
// dispatcher (DispatchKey) is exercised by a GUI host translating key
// events; a raw CLI pump has no key-event source, so it writes bytes
// through unmodified.
func pumpStdinToPty(r io.Reader, t *term.Terminal, w io.Writer) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = w.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func parseSize(spec string) (cols, rows int, ok bool) {
	parts := strings.SplitN(spec, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	c, err1 := strconv.Atoi(parts[0])
	r, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return c, r, true
}

func holdOrExit(hold string, childErr error) error {
	switch hold {
	case "always":
		fmt.Fprintln(os.Stderr, "[process completed]")
		return nil
	case "error":
		if childErr != nil {
			fmt.Fprintln(os.Stderr, "[process exited with error]", childErr)
		}
		return nil
	case "never":
		return childErr
	default: // "start" or unrecognized: behave like never for a non-interactive host
		return childErr
	}
}
