package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/taxfolio/taxfolio/cmd"
)

func main() {
	completion().Complete("tf")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the CLI for shell completion; Complete returns
// immediately unless invoked by the shell's completion hook.
func completion() *complete.Command {
	bundleFlag := map[string]complete.Predictor{"bundle": predict.Dirs("*")}
	currencies := predict.Set{"USD", "ILS", "EUR", "GBP", "ILA"}

	return &complete.Command{
		Flags: bundleFlag,
		Sub: map[string]*complete.Command{
			"summary": {Flags: map[string]complete.Predictor{
				"c": currencies,
				"p": predict.Something,
			}},
			"holdings": {Flags: map[string]complete.Predictor{
				"p": predict.Something,
			}},
			"gains": {Flags: map[string]complete.Predictor{
				"c": currencies,
				"p": predict.Something,
			}},
			"lots": {Flags: map[string]complete.Predictor{
				"p": predict.Something,
			}},
			"dividends": {Flags: map[string]complete.Predictor{
				"p": predict.Something,
			}},
		},
	}
}
