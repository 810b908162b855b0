// Command server starts the HTTP server directly, without the CLI.
package main

import (
	"fmt"
	"os"

	"github.com/dukaanlabs/dukaan/internal/server"

	_ "github.com/dukaanlabs/dukaan/database/migrations"
)

func main() {
	if err := server.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
