package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RubachokBoss/kattis-report/internal/app"
	"github.com/RubachokBoss/kattis-report/internal/config"
	"github.com/RubachokBoss/kattis-report/pkg/logger"
	flag "github.com/spf13/pflag"
)

func main() {
	sessionID := flag.StringP("session", "s", "", "session id, e.g. ksjc95")
	flag.Bool("publish", false, "publish the standings to RabbitMQ")
	flag.String("log-level", "warn", "log level (debug, info, warn, error, disabled)")
	flag.Parse()

	cfg, err := config.Load(config.Options{
		FlagSet: flag.CommandLine,
		Flags: map[string]string{
			"report.session_id": "session",
			"rabbitmq.enabled":  "publish",
			"logging.level":     "log-level",
		},
	})
	if err != nil {
		fail(err)
	}

	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)
	log.Debug().Strs("files", cfg.Files).Msg("Configuration loaded")

	application, err := app.New(cfg, log, app.Options{})
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create application")
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	err = application.RunSession(ctx, app.SessionOptions{SessionID: *sessionID}, os.Stdout)
	stop()
	application.Close()

	if err != nil {
		log.Debug().Err(err).Msg("Session report failed")
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, app.Describe(err))
	os.Exit(app.ExitCode(err))
}
