package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/kernagent/internal"
)

const usage = `kernagent - one-shot chat replies from a kernel of completion services

Prerequisites:
  - Set the api key of every configured vendor, by default OPENAI_API_KEY
  - Services are configured in kernelConfig.json (or .yaml) found in
    $KERNAGENT_CONFIG_DIR, or <user config dir>/kernagent

Usage: kernagent [flags] <message...>
       <command> | kernagent [flags]

Flags:
  -s, -service string         Set the service to reply with. (default is default_service of the config)
  -n, -name string            Set the name of the agent. (default 'kernagent')
  -r, -raw bool               Print the reply once done instead of streaming tokens.
  -t, -temperature float      Set the temperature of the reply. (default is the configured one)
  -v, -version bool           Print version and exit.

Examples:
  - kernagent "What's the capital of Sweden?"
  - kernagent -s claude -t 0.2 summarize the plot of Hamlet
  - git diff | kernagent -r
`

func main() {
	ancli.SetupSlog()
	if misc.Truthy(os.Getenv("DEBUG_CPU")) {
		f, err := os.Create("cpu_profile.prof")
		if err != nil {
			ancli.PrintErr(fmt.Sprintf("failed to create profiler file: %v\n", err))
		} else {
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				ancli.PrintErr(fmt.Sprintf("failed to start profiler: %v\n", err))
			}
			defer pprof.StopCPUProfile()
		}
	}
	code := run(os.Args[1:])
	if code != 0 {
		os.Exit(code)
	}
}

// run kernagent with args, returns the exit code
func run(args []string) int {
	return runWithIO(args, os.Stdin, os.Stdout)
}

func runWithIO(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) > 0 && (args[0] == "h" || args[0] == "help") {
		fmt.Fprint(stdout, usage)
		return 0
	}
	runner, err := internal.Setup(args, stdin, stdout)
	if err != nil {
		if errors.Is(err, internal.ErrNoInput) {
			fmt.Fprint(stdout, usage)
		}
		ancli.PrintErr(fmt.Sprintf("failed to setup: %v\n", err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { shutdown.Monitor(cancel) }()
	if err := runner.Run(ctx); err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to run: %v\n", err))
		return 1
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("things seems to have worked out. Bye bye!\n")
	}
	return 0
}
