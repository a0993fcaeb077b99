package internal

import (
	"flag"
	"fmt"
	"io"

	"github.com/baalimago/kernagent/internal/utils"
)

// Configurations set through the command line
type Configurations struct {
	ServiceID string
	AgentName string
	PrintRaw  bool
	Version   bool
	// Temperature below zero means "use the configured value"
	Temperature float64
}

var defaultFlags = Configurations{
	AgentName:   "kernagent",
	Temperature: -1,
}

// parseFlags parses args into Configurations. Short and long forms of the
// same flag are mutually exclusive.
func parseFlags(defaults Configurations, args []string, output io.Writer) (Configurations, []string, error) {
	fs := flag.NewFlagSet("kernagent", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	sShort := fs.String("s", defaults.ServiceID, "Set the service to reply with. Mutually exclusive with service flag.")
	sLong := fs.String("service", defaults.ServiceID, "Set the service to reply with. Mutually exclusive with s flag.")

	nShort := fs.String("n", defaults.AgentName, "Set the name of the agent. Mutually exclusive with name flag.")
	nLong := fs.String("name", defaults.AgentName, "Set the name of the agent. Mutually exclusive with n flag.")

	printRawShort := fs.Bool("r", defaults.PrintRaw, "Set to true to print the reply once done instead of streaming tokens.")
	printRawLong := fs.Bool("raw", defaults.PrintRaw, "Set to true to print the reply once done instead of streaming tokens.")

	versionShort := fs.Bool("v", defaults.Version, "Print version and exit.")
	versionLong := fs.Bool("version", defaults.Version, "Print version and exit.")

	tShort := fs.Float64("t", defaults.Temperature, "Set the temperature of the reply. Mutually exclusive with temperature flag.")
	tLong := fs.Float64("temperature", defaults.Temperature, "Set the temperature of the reply. Mutually exclusive with t flag.")

	if err := fs.Parse(args); err != nil {
		return Configurations{}, nil, fmt.Errorf("failed to parse args: %w", err)
	}

	serviceID, err := utils.ReturnNonDefault(*sShort, *sLong, defaults.ServiceID)
	if err != nil {
		return Configurations{}, nil, flagError(err, "s", "service")
	}
	name, err := utils.ReturnNonDefault(*nShort, *nLong, defaults.AgentName)
	if err != nil {
		return Configurations{}, nil, flagError(err, "n", "name")
	}
	temperature, err := utils.ReturnNonDefault(*tShort, *tLong, defaults.Temperature)
	if err != nil {
		return Configurations{}, nil, flagError(err, "t", "temperature")
	}

	return Configurations{
		ServiceID:   serviceID,
		AgentName:   name,
		PrintRaw:    *printRawShort || *printRawLong,
		Version:     *versionShort || *versionLong,
		Temperature: temperature,
	}, fs.Args(), nil
}

func flagError(err error, shortFlag, longFlag string) error {
	return fmt.Errorf("flags '-%v' and '-%v': %w", shortFlag, longFlag, err)
}
