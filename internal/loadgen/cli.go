package loadgen

import (
	"os"
)

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Gradebook Seeding Tool
======================

Posts random valid submissions to a running gradebook service, then checks
that the history and statistics are consistent.

Usage:
  seed-evaluations [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -count int
        Number of submissions to generate (default 50)
  -workers int
        Number of concurrent workers (default CPU cores)
  -timeout duration
        HTTP request timeout (default 10s)
  -clear
        Clear the history before submitting
  -output string
        Write the generated submissions to this JSON file
  -verbose
        Log every failed submission
  -help
        Show this help message

Examples:
  seed-evaluations -count 150 -workers 8 -clear
  seed-evaluations -url http://localhost:8080 -output seeded.json
`)
}
