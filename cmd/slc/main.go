// Command slc implements spec §6's CLI contract: `compile <src> <out>
// [-v]` runs the full pipeline (parse, analyze, generate, resolve,
// peephole-optimize) over SL source and writes the resulting instruction
// listing; the supplemented `run <program> [-stats]` executes an
// already-compiled listing against the in-process register machine.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"slc/internal/cliutil"
	"slc/internal/parser"
	"slc/internal/pipeline"
	"slc/internal/vm"
)

func runCompile(opt cliutil.Options) error {
	if opt.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	src, err := cliutil.ReadFile(opt.Src)
	if err != nil {
		return err
	}

	prog, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", opt.Src, err)
	}
	logrus.WithField("procedures", len(prog.Procedures)).Debug("parsed source")

	res, err := pipeline.Compile(prog)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", opt.Src, err)
	}
	logrus.WithFields(logrus.Fields{
		"symbolic": len(res.Symbolic),
		"resolved": len(res.Resolved),
		"final":    len(res.Final),
	}).Debug("pipeline stage sizes")

	return cliutil.WriteLines(opt.Out, pipeline.Render(res.Final))
}

func runExec(opt cliutil.Options) error {
	if opt.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	text, err := cliutil.ReadFile(opt.Program)
	if err != nil {
		return err
	}

	program, err := pipeline.ParseProgram(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("parsing instruction listing: %w", err)
	}
	logrus.WithField("instructions", len(program)).Debug("loaded program")

	instance := vm.New(program, vm.Input(os.Stdin), vm.Output(os.Stdout))
	if err := instance.Run(); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}

	if opt.Stats {
		fmt.Printf("instructions executed: %d\n", instance.InstructionsExecuted())
	}
	return nil
}

func main() {
	opt, err := cliutil.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}

	switch opt.Cmd {
	case cliutil.Compile:
		err = runCompile(opt)
	case cliutil.Run:
		err = runExec(opt)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "slc: %s\n", err)
		os.Exit(1)
	}
}
