// Package main is the entry point for the plant-environment monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/rx178nwj/SoilMonitorRev2/internal/app"
	"github.com/rx178nwj/SoilMonitorRev2/internal/constants"
	"github.com/rx178nwj/SoilMonitorRev2/internal/log"
	"github.com/rx178nwj/SoilMonitorRev2/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "plantmonitor.yaml", "Path to the board configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("plantmonitor %s (%s/%s)\n", constants.Version, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	board, err := config.LoadBoardConfig(*cfgFile)
	if err != nil {
		log.Errorf("failed to load board configuration: %v", err)
		os.Exit(1)
	}

	application, err := app.New(board, log.GetSugaredLogger(), constants.Version)
	if err != nil {
		log.Errorf("failed to initialize application: %v", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Errorf("application error: %v", err)
		os.Exit(1)
	}
}
