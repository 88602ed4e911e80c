// school-admin is the terminal front end of the school administration
// client. Each subcommand opens one page (list, add, edit, delete) against
// the API at APP_URL.
//
//	APP_URL=http://localhost:3000 go run ./cmd/school-admin students list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/school-admin/internal/config"
	"github.com/aanand-mishra/school-admin/internal/http/client"
	"github.com/aanand-mishra/school-admin/internal/logger"
)

func main() {
	configFlag := flag.String("config", "", "Path to the configuration YAML file")
	flag.Parse()
	cfg := config.MustLoad(config.Path(*configFlag))

	log := logger.New(cfg.Env, os.Stderr)

	api, err := client.New(cfg.AppURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to create api client", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := commandLine{
		api:    api,
		log:    log,
		delay:  cfg.RedirectDelay,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	args := append([]string{os.Args[0]}, flag.Args()...)
	if err := cli.run(ctx, args); err != nil {
		if !errors.Is(err, errHelp) && !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		stop()
		os.Exit(1)
	}
}
