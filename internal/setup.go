package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/kernagent/internal/kernel"
	"github.com/baalimago/kernagent/internal/utils"
	"github.com/baalimago/kernagent/internal/vendors"
	"github.com/baalimago/kernagent/pkg/agent"
	pub_models "github.com/baalimago/kernagent/pkg/text/models"
)

// ErrNoInput is returned when there's neither a message as argument nor
// anything piped on stdin.
var ErrNoInput = errors.New("no message given, pass it as argument or pipe it on stdin")

// Runner is the configured action of one invocation.
type Runner interface {
	Run(ctx context.Context) error
}

// Query generates one reply to a message with the configured kernel.
type Query struct {
	agent    *agent.ChatCompletionAgent
	registry agent.Registry
	args     pub_models.Arguments
	message  string
	raw      bool
	out      io.Writer
}

// Setup parses args, loads the kernel config and returns what to run.
func Setup(args []string, stdin io.Reader, out io.Writer) (Runner, error) {
	flagSet, rest, err := parseFlags(defaultFlags, args, out)
	if err != nil {
		return nil, err
	}
	if flagSet.Version {
		return versionPrinter{out: out}, nil
	}

	message := strings.TrimSpace(strings.Join(rest, " "))
	if message == "" {
		message, err = utils.ReadPiped(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if message == "" {
		return nil, ErrNoInput
	}

	configDirPath, err := utils.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find config dir: %w", err)
	}
	if err := utils.CreateConfigDir(configDirPath); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	conf, err := utils.LoadKernelConfig(configDirPath)
	if err != nil {
		return nil, err
	}
	k, err := kernel.FromConfig(conf, vendors.NewFromConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kernel: %w", err)
	}

	serviceID := flagSet.ServiceID
	if serviceID == "" {
		serviceID = conf.DefaultService
	}
	options := []agent.Option{agent.WithServiceID(serviceID)}
	if !flagSet.PrintRaw {
		options = append(options, agent.WithTokenWriter(out))
	}

	var overrides []*pub_models.Settings
	if flagSet.Temperature >= 0 {
		temp := flagSet.Temperature
		overrides = append(overrides, &pub_models.Settings{ServiceID: serviceID, Temperature: &temp})
	}

	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("setup done, service: '%v', services: %v\n", serviceID, k.Services()))
	}
	return &Query{
		agent:    agent.New(flagSet.AgentName, options...),
		registry: k,
		args:     pub_models.NewArguments(overrides...),
		message:  message,
		raw:      flagSet.PrintRaw,
		out:      out,
	}, nil
}

func (q *Query) Run(ctx context.Context) error {
	msg, err := q.agent.ProcessMessage(q.message)
	if err != nil {
		return fmt.Errorf("failed to process message: %w", err)
	}
	reply, err := q.agent.GenerateReply(ctx, []pub_models.Message{msg}, q.registry, q.args)
	if err != nil {
		return fmt.Errorf("failed to generate reply: %w", err)
	}
	if q.raw {
		fmt.Fprint(q.out, reply.Content)
	}
	fmt.Fprintln(q.out)
	return nil
}
