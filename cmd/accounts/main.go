// Command accounts serves the spacehub account lifecycle API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/spacehub/internal/accounts/app"
)

func main() {
	showVersion := flag.Bool("version", false, "print the build version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(app.BuildVersion)
		return
	}

	application, err := app.New(app.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}
