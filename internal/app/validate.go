package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	sourceschema "tarmac.news/avdigest/schema"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	sourcesPath := fs.String("sources", "./sources.json", "Path to the sources config file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	path := strings.TrimSpace(*sourcesPath)
	cfg, err := sourceschema.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		return 1
	}

	fmt.Printf("ok: config valid: %s\n", path)
	fmt.Printf("companies=%d sources=%d\n", len(cfg.Companies), len(cfg.Sources))
	return 0
}
