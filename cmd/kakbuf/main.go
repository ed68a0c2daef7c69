// Package main is the entry point for the kakbuf buffer tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/asdlei99/kakoune/internal/buffer"
	"github.com/asdlei99/kakoune/internal/column"
	"github.com/asdlei99/kakoune/internal/config"
	"github.com/asdlei99/kakoune/internal/debug"
	"github.com/asdlei99/kakoune/internal/event"
	"github.com/asdlei99/kakoune/internal/fifo"
	"github.com/asdlei99/kakoune/internal/file"
	"github.com/asdlei99/kakoune/internal/hook"
	"github.com/asdlei99/kakoune/internal/logging"
	"github.com/asdlei99/kakoune/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		tabstop    int
		logLevel   string
		scroll     bool
		scriptPath string
	)
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.IntVar(&tabstop, "tabstop", 0, "Tab width in columns (overrides config)")
	flag.IntVar(&tabstop, "t", 0, "Tab width in columns (shorthand)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&scroll, "scroll", false, "Follow appended fifo content instead of pinning line one")
	flag.BoolVar(&scroll, "s", false, "Follow appended fifo content (shorthand)")
	flag.StringVar(&scriptPath, "script", "", "Lua script defining an on_hook handler")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "kakbuf - buffer ingestion and width tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: kakbuf [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  tail [fifo]    Ingest a fifo (or piped stdin) and echo appended content\n")
		fmt.Fprintf(os.Stderr, "  width <file>   Report the visual width of each line\n")
		fmt.Fprintf(os.Stderr, "  cat <file>     Decode a file and print its buffer content\n")
		fmt.Fprintf(os.Stderr, "  watch <file>   Reprint the file whenever it changes on disk\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mkfifo p && kakbuf tail p       Follow a fifo\n")
		fmt.Fprintf(os.Stderr, "  make 2>&1 | kakbuf tail         Ingest piped output\n")
		fmt.Fprintf(os.Stderr, "  kakbuf -t 4 width main.go       Line widths with tabstop 4\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("kakbuf %s (%s)\n", version, commit)
		return 0
	}

	opts, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if tabstop > 0 {
		opts.TabStop = tabstop
	}
	if logLevel != "" {
		opts.LogLevel = logLevel
	}
	if scroll {
		opts.Scroll = true
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logging.SetLevel(opts.LogLevel)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return 2
	}

	switch args[0] {
	case "tail":
		return runTail(opts, scriptPath, args[1:])
	case "width":
		return runWidth(opts, args[1:])
	case "cat":
		return runCat(args[1:])
	case "watch":
		return runWatch(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
		flag.Usage()
		return 2
	}
}

// runTail ingests a fifo (or piped stdin) into a buffer and echoes every
// appended range to stdout until the stream closes.
func runTail(opts config.Options, scriptPath string, args []string) int {
	var fd int
	var name string
	switch {
	case len(args) == 1:
		f, err := unix.Open(args[0], unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open %s: %v\n", args[0], err)
			return 1
		}
		fd, name = f, args[0]
	case len(args) == 0 && !term.IsTerminal(int(os.Stdin.Fd())):
		fd, name = int(os.Stdin.Fd()), "*stdin*"
		if err := unix.SetNonblock(fd, true); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: tail needs a fifo path or piped stdin\n")
		return 2
	}

	mgr := buffer.NewManager()
	loop, err := event.NewLoop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer loop.Close()

	sink := debug.NewSink(mgr)

	if scriptPath != "" {
		engine := script.NewEngine(logging.Component("script"))
		defer engine.Close()
		if err := engine.LoadFile(scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		engine.Bind(mgr.Hooks(), "user-script", 10)
	}

	mgr.Hooks().Add(hook.BufReadFifo, "echo", 0, func(ev hook.Event) {
		buf, ok := mgr.Get(ev.Buffer)
		if !ok {
			return
		}
		begin, end, err := parseRange(ev.Param)
		if err != nil {
			sink.Write(fmt.Sprintf("bad range %q: %v", ev.Param, err))
			return
		}
		os.Stdout.WriteString(buf.TextRange(begin, end))
	})

	stopped := false
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		loop.Post(func() { stopped = true })
	}()

	buf := fifo.Start(mgr, loop, name, fd, buffer.FlagNone, opts.Scroll,
		fifo.WithChunkSize(opts.FifoChunkSize), fifo.WithMaxReads(opts.FifoMaxReads))

	for buf.Flags().Has(buffer.FlagFifo) && !stopped {
		if _, err := loop.RunOnce(-1); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// runWidth prints the visual width of every line in a file.
func runWidth(opts config.Options, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: width needs exactly one file\n")
		return 2
	}

	mgr := buffer.NewManager()
	buf, err := file.Open(mgr, args[0], buffer.FlagNone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	max := 0
	for i := 0; i < buf.LineCount(); i++ {
		line := strings.TrimSuffix(buf.Line(i), "\n")
		w := column.StringWidth(line, opts.TabStop)
		if w > max {
			max = w
		}
		fmt.Printf("%6d  %s\n", w, line)
	}
	fmt.Printf("max %d over %d lines\n", max, buf.LineCount())
	return 0
}

// runCat decodes a file into a buffer and prints it.
func runCat(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: cat needs exactly one file\n")
		return 2
	}

	mgr := buffer.NewManager()
	buf, err := file.OpenOrCreate(mgr, args[0], buffer.FlagNone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if buf.Flags().Has(buffer.FlagNew) {
		fmt.Fprintf(os.Stderr, "%s: new file\n", args[0])
		return 0
	}
	os.Stdout.WriteString(buf.Text())
	return 0
}

// runWatch follows a file on disk, reloading and reprinting it on change.
func runWatch(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: watch needs exactly one file\n")
		return 2
	}

	mgr := buffer.NewManager()
	loop, err := event.NewLoop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer loop.Close()

	buf, err := file.Open(mgr, args[0], buffer.FlagNone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	watcher, err := file.NewWatcher(mgr, loop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer watcher.Close()
	if err := watcher.Add(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgr.Hooks().Add(hook.BufFileChanged, "reload", 0, func(ev hook.Event) {
		b, ok := mgr.Get(ev.Buffer)
		if !ok {
			return
		}
		if err := file.Reload(b); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		os.Stdout.WriteString(b.Text())
	})

	stopped := false
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		loop.Post(func() { stopped = true })
	}()

	os.Stdout.WriteString(buf.Text())
	for !stopped {
		if _, err := loop.RunOnce(-1); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// parseRange parses the 1-based "line.col,line.col" hook payload back into
// coordinates.
func parseRange(s string) (begin, end buffer.Coord, err error) {
	var bl, bc, el, ec int
	if _, err = fmt.Sscanf(s, "%d.%d,%d.%d", &bl, &bc, &el, &ec); err != nil {
		return buffer.Coord{}, buffer.Coord{}, err
	}
	begin = buffer.Coord{Line: bl - 1, Col: bc - 1}
	end = buffer.Coord{Line: el - 1, Col: ec - 1}
	return begin, end, nil
}
