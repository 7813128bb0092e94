// Command sable evaluates Sable programs, prints their IR and runs their
// @test functions.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/config"
)

const toolName = "sable"

var commands = []cli.CommandInfo{
	{
		Name:        "run",
		Usage:       "sable run [-ir] FILE...",
		Description: "Evaluate one or more source files",
		Examples:    []string{"sable run main.sb", "sable run -ir a.sb b.sb"},
		Flags: []cli.FlagInfo{
			{Name: "ir", Usage: "Also lower the program to IR and print it"},
		},
	},
	{
		Name:        "ir",
		Usage:       "sable ir FILE",
		Description: "Print the optimized IR of a file",
		Examples:    []string{"sable ir main.sb"},
	},
	{
		Name:        "test",
		Usage:       "sable test FILE",
		Description: "Run the @test functions of a file",
		Examples:    []string{"sable test units.sb"},
	},
	{
		Name:        "watch",
		Usage:       "sable watch FILE",
		Description: "Re-evaluate a file whenever it changes",
		Examples:    []string{"sable watch main.sb"},
	},
	{
		Name:        "version",
		Usage:       "sable version [--json]",
		Description: "Show version information",
		Flags: []cli.FlagInfo{
			{Name: "json", Short: "j", Usage: "Output as JSON"},
		},
	},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		cli.PrintUsage(stderr, toolName, commands)
		return 2
	}

	sub, args := args[0], args[1:]
	switch sub {
	case "help", "-h", "--help":
		cli.PrintUsage(stdout, toolName, commands)
		return 0
	case "version", "-v", "--version":
		jsonOutput := false
		for _, arg := range args {
			if arg == "--json" || arg == "-j" {
				jsonOutput = true
			}
		}
		cli.PrintVersion(stdout, toolName, jsonOutput)
		return 0
	case "run", "ir", "test", "watch":
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", sub)
		cli.PrintUsage(stderr, toolName, commands)
		return 2
	}

	info := commandInfo(sub)
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, toolName, info) }
	configPath := fs.String("config", "", "configuration file")
	verbose := fs.Bool("verbose", false, "verbose logging")
	debug := fs.Bool("debug", false, "debug logging")
	withIR := false
	if sub == "run" {
		fs.BoolVar(&withIR, "ir", false, "print the IR after evaluation")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	files := fs.Args()
	if err := cli.ValidateArgs(files, 1, info.Usage); err != nil {
		cli.PrintError(stderr, err)
		return 2
	}
	if sub != "run" && len(files) != 1 {
		fmt.Fprintf(stderr, "Error: %s takes exactly one file\n", sub)
		return 2
	}

	cfg, err := loadConfig(*configPath, files[0])
	if err != nil {
		cli.PrintError(stderr, err)
		return 1
	}
	cfg.Verbose = cfg.Verbose || *verbose
	cfg.Debug = cfg.Debug || *debug
	logger := cli.NewLogger(stderr, cfg.Verbose, cfg.Debug)
	if cfg.Path != "" {
		logger.Info("using configuration %s", cfg.Path)
	}

	d := &driver{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
		stderr: stderr,
		color:  colorEnabled(stderr),
	}

	switch sub {
	case "run":
		return d.runFiles(context.Background(), files, withIR)
	case "ir":
		return d.printIR(files[0])
	case "test":
		return d.runTests(files[0])
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return d.watch(ctx, files[0])
	}
}

func commandInfo(name string) cli.CommandInfo {
	for _, c := range commands {
		if c.Name == name {
			return c
		}
	}
	return cli.CommandInfo{Name: name}
}

// loadConfig reads an explicit configuration file or searches upward from
// the directory of the first source file, then checks the language gate.
func loadConfig(explicit, firstFile string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if explicit != "" {
		if _, statErr := os.Stat(explicit); statErr != nil {
			return nil, fmt.Errorf("config: %w", statErr)
		}
		cfg, err = config.Load(explicit)
	} else {
		cfg, err = config.Find(filepath.Dir(firstFile))
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckLanguage(cli.Version); err != nil {
		return nil, err
	}
	return cfg, nil
}
