// Package cliutil parses the slc command line (spec §6's CLI contract,
// plus the supplemented `run` mode):
//
//	slc compile <src> <out> [-v]
//	slc run <program> [-stats] [-v]
//
// Grounded on the teacher's util/args.go: a hand-rolled argument loop
// rather than a flag-parsing library, a tabwriter-formatted -h, and
// immediate os.Exit on -h/-version.
package cliutil

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
)

const appVersion = "slc compiler 1.0"

// Command selects which of slc's two subcommands Options describes.
type Command int

const (
	Compile Command = iota
	Run
)

// Options is the parsed command line.
type Options struct {
	Cmd Command

	// compile
	Src, Out string

	// run
	Program string // path to a resolved instruction listing, or "-" for stdin
	Stats   bool   // -stats: print InstructionsExecuted after execution

	Verbose bool // -v: raise logrus to debug level
}

// ParseArgs parses os.Args[1:] into Options.
func ParseArgs() (Options, error) {
	if len(os.Args) < 2 {
		return Options{}, errors.New("no subcommand given, expected 'compile' or 'run'")
	}
	switch os.Args[1] {
	case "-h", "--h", "-help", "--help":
		printHelp()
		os.Exit(0)
	case "-version", "--version":
		fmt.Println(appVersion)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "compile":
		return parseCompile(os.Args[2:])
	case "run":
		return parseRun(os.Args[2:])
	default:
		return Options{}, errors.Errorf("unexpected subcommand %q, expected 'compile' or 'run'", os.Args[1])
	}
}

func parseCompile(args []string) (Options, error) {
	opt := Options{Cmd: Compile}
	var positional []string
	for _, arg := range args {
		switch arg {
		case "-v":
			opt.Verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opt, errors.Errorf("unexpected flag: %s", arg)
			}
			positional = append(positional, arg)
		}
	}
	if len(positional) != 2 {
		return opt, errors.New("usage: slc compile <src> <out> [-v]")
	}
	opt.Src, opt.Out = positional[0], positional[1]
	return opt, nil
}

func parseRun(args []string) (Options, error) {
	opt := Options{Cmd: Run}
	var positional []string
	for _, arg := range args {
		switch arg {
		case "-stats":
			opt.Stats = true
		case "-v":
			opt.Verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opt, errors.Errorf("unexpected flag: %s", arg)
			}
			positional = append(positional, arg)
		}
	}
	if len(positional) != 1 {
		return opt, errors.New("usage: slc run <program> [-stats] [-v]")
	}
	opt.Program = positional[0]
	return opt, nil
}

func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "slc compile <src> <out> [-v]\tCompile SL source to a resolved instruction listing.")
	_, _ = fmt.Fprintln(w, "slc run <program> [-stats] [-v]\tExecute a resolved instruction listing. Use '-' to read from stdin.")
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-version\tPrints application version and exits.")
	_ = w.Flush()
}
