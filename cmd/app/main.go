package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kestrel/internal/core"
	"kestrel/internal/foreign"
	"kestrel/internal/util"
	"kestrel/internal/value"
	"kestrel/internal/vm"
)

var (
	// Version is the current version of the kestrel binary.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// runtime config
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config := util.Configuration{
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    Commit,
		LogLevel:  logLevel,
		LogFile:   logFile,
	}
	if configPath != "" {
		loaded, err := util.LoadConfiguration(configPath, config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load configuration '%s': %v\n", configPath, err)
			os.Exit(1)
		}
		config = loaded
	}

	// Creates a new Logger that uses a JSONHandler to write to standard output
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	os.Exit(run(config))
}

// run drives a small expression pipeline against the combinator registry
// and, when a sqlite endpoint is reachable, against the database module.
func run(config util.Configuration) int {
	machine := vm.New()
	fns := core.Functions()

	add := &value.Function{
		Name:      "add",
		Signature: "N,N",
		Fn: func(m value.Machine) {
			a := m.Param(0)
			b := m.Param(1)
			if a == nil || !a.IsNumeric() || b == nil || !b.IsNumeric() {
				m.RaiseParamError("N,N")
				return
			}
			m.Retval(value.Int(a.ForceInt() + b.ForceInt()))
		},
	}

	numbers := value.NewSequence()
	for i := int64(1); i <= 10; i++ {
		numbers.Append(value.Int(i))
	}

	sum := value.FromSeq(value.SequenceOf(
		value.FromFunc(fns["reduce"]),
		value.FromFunc(add),
		value.FromSeq(numbers),
	))
	result, err := machine.Eval(sum)
	if err != nil {
		reportError(err)
		return 1
	}
	fmt.Printf("reduce(add, 1..10) = %s\n", result.Inspect())

	if err := runDbDemo(machine, config); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

// runDbDemo exercises the database module over an in-memory sqlite store:
// create, insert via a counted loop, read back.
func runDbDemo(machine *vm.VM, config util.Configuration) error {
	driver, dsn := "sqlite3", "file:kestrel?mode=memory&cache=shared"
	for _, db := range config.Databases {
		driver, dsn = db.Driver, db.DSN
		break
	}

	module := foreign.NewDbModule()
	defer module.Close()
	dbFns := module.Functions()

	conn, err := machine.Call(value.FromFunc(dbFns["db.connect"]),
		value.String(driver), value.String(dsn))
	if err != nil {
		return err
	}

	_, err = machine.Call(value.FromFunc(dbFns["db.exec"]), conn,
		value.String("CREATE TABLE runs (id INTEGER PRIMARY KEY, note TEXT)"))
	if err != nil {
		return err
	}

	// [times, 1..6, nil, [[db.exec, conn, "INSERT ...", "tick"]]]
	insert := value.SequenceOf(
		value.FromFunc(dbFns["db.exec"]),
		conn,
		value.String("INSERT INTO runs (note, id) VALUES (?, ?)"),
		value.String("tick"),
	)
	loop := value.FromSeq(value.SequenceOf(
		value.FromFunc(core.Functions()["times"]),
		value.NewRange(1, 6, 1, false),
		value.Nil(),
		value.FromSeq(value.SequenceOf(value.FromSeq(insert))),
	))
	if _, err := machine.Eval(loop); err != nil {
		return err
	}

	rows, err := machine.Call(value.FromFunc(dbFns["db.query"]), conn,
		value.String("SELECT id, note FROM runs ORDER BY id"))
	if err != nil {
		return err
	}
	fmt.Printf("rows = %s\n", rows.Inspect())

	_, err = machine.Call(value.FromFunc(dbFns["db.close"]), conn)
	return err
}

func reportError(err error) {
	if rte, ok := err.(*vm.RuntimeError); ok {
		fmt.Fprintln(os.Stderr, rte.RenderTrace())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("kestrel version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: kestrel [options]

Options:
  -config <path>     Path to a TOML configuration file.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Kestrel is an embeddable evaluation core for deferred expressions. The
binary runs a demonstration pipeline: a functional reduction over the
combinator registry and a counted loop feeding a relational store.

Examples:
  kestrel -log-level=debug      Run the demo with debug logging enabled
  kestrel -config=kestrel.toml  Run against a configured database endpoint

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
