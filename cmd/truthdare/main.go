// Command truthdare serves the truth or dare content API.
//
// All logic lives in internal/; this package only hands control to the CLI.
// With no subcommand the HTTP server starts:
//
//	truthdare                 serve with TRUTH_DARE_* settings
//	truthdare validate        check the content files
//	truthdare import --source sqlite --dsn data/content.db
package main

import (
	"os"

	"github.com/truthdare/truthdare-api/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
