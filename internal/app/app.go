// Package app wires the avdigest subcommands: canonicalize, filter, dedup,
// validate, archive, health. Each runner owns its flag set and returns a
// process exit code.
package app

import (
	"fmt"
	"os"
	"time"

	"tarmac.news/avdigest/internal/globaltime"
)

func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "canonicalize":
		return runCanonicalize(args[1:])
	case "filter":
		return runFilter(args[1:])
	case "dedup":
		return runDedup(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "archive":
		return runArchive(args[1:])
	case "health":
		return runHealth(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: avdigest <command> [flags]

Commands:
  canonicalize  Parse raw items into canonical records with link/title dedup
  filter        Classify canonical items for relevance
  dedup         Remove semantic near-duplicates from filtered items
  validate      Validate the sources configuration file
  archive       Persist a date's decisions and stats to the archive database
  health        Check configuration, artifact roots, and database connectivity

Run 'avdigest <command> -h' for command flags.
`)
}

// defaultRunDate is today's calendar date in the pipeline's home time zone.
// Runs kicked off around midnight UTC still land on the Beijing date the
// digest is published under.
func defaultRunDate() string {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return globaltime.UTC().Format("2006-01-02")
	}
	return globaltime.DateIn(loc)
}
