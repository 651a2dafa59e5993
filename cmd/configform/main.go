// Command configform loads a configuration schema and produces configuration
// documents from it, either from the command line, a terminal session or a
// browser form.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/goliatone/go-configform/pkg/orchestrator"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app carries the process streams so commands can be exercised in tests.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	lookupEnv  func(string) (string, bool)
	collector  orchestrator.Collector
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		lookupEnv: os.LookupEnv,
	}
	os.Exit(a.run(ctx, os.Args[1:]))
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return exitUsage
	}

	commands := map[string]func(context.Context, []string) error{
		"validate": a.cmdValidate,
		"fields":   a.cmdFields,
		"generate": a.cmdGenerate,
		"check":    a.cmdCheck,
		"list":     a.cmdList,
		"serve":    a.cmdServe,
	}

	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		a.usage()
		return exitOK
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(a.stderr, "unknown command %q\n\n", name)
		a.usage()
		return exitUsage
	}

	if err := cmd(ctx, args[1:]); err != nil {
		switch {
		case isUsage(err):
			return exitUsage
		case isSilent(err):
			return exitFailure
		default:
			fmt.Fprintln(a.stderr, err)
			return exitFailure
		}
	}
	return exitOK
}

func (a *app) usage() {
	fmt.Fprint(a.stderr, `Usage: configform <command> [flags]

Commands:
  validate   load a schema and print its summary
  fields     list the form fields derived from a schema
  generate   resolve inputs into a configuration document
  check      validate an existing configuration against a schema
  list       list schemas found in a directory
  serve      serve the configuration form over HTTP

Run "configform <command> -h" for command flags.
`)
}
