// Package main implements sctester, the command-line tool to check, fingerprint
// and store the test suites of the execution engine, and to read its results.
//
// Unix example:
//
//	# Check that a suite is well-formed.
//	sctester validate --file transfer.yaml
//
//	# Save it in the library and list the library.
//	sctester store save --name transfer --file transfer.yaml
//	sctester store list
//
//	# Pair the results reported by the engine with the actions.
//	sctester results --file transfer.yaml --results out.json
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sctester/scenario"
	"github.com/sctester/scenario/cli/ucli"
	"github.com/sctester/scenario/config"
	sjson "github.com/sctester/scenario/serde/json"
	"github.com/sctester/scenario/suite/loader"
	"golang.org/x/xerrors"
)

func main() {
	err := run(os.Args, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	err = scenario.SetLogLevel(cfg.LogLevel)
	if err != nil {
		return xerrors.Errorf("failed to set log level: %v", err)
	}

	ctx := sjson.NewContext()

	cmds := commands{
		out:    out,
		cfg:    cfg,
		ctx:    ctx,
		loader: loader.NewLoader(ctx),
	}

	builder := ucli.NewBuilder("sctester",
		ucli.WithUsage("Test suites of the smart-contract execution engine"),
		ucli.WithVersion(scenario.Version),
		ucli.WithWriter(out))

	cmds.register(builder)

	return builder.Build().Run(args)
}
