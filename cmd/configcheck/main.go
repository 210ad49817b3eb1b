// configcheck resolves the suite configuration for an environment and
// reports every problem it finds at once, so a broken CI setup surfaces
// all missing values in a single run.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/omsd-qa/omsd-e2e/internal/config"
)

func main() {
	env := flag.String("env", "", "target environment name (default: APP_ENV or qa)")
	configFile := flag.String("config", "config.yaml", "path to the YAML configuration file")
	strict := flag.Bool("strict", false, "also require credentials for every role and a complete OTP mailbox")
	flag.Parse()

	cfg, err := config.LoadConfig(config.Flags{Env: *env, ConfigFile: *configFile})
	if err != nil {
		printProblems(err)
		os.Exit(1)
	}
	if *strict {
		if err := cfg.ValidateStrict(); err != nil {
			cfg.PrintStartupSummary()
			printProblems(err)
			os.Exit(1)
		}
	}
	cfg.PrintStartupSummary()
	fmt.Println("configuration OK")
}

func printProblems(err error) {
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintln(os.Stderr, "configuration problems:")
		for _, problem := range validationErr.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", problem)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
}
