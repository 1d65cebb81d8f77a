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
	courseID := flag.StringP("courseid", "c", "", "course id, e.g. KSALDAS/2021-Spring")
	file := flag.StringP("file", "f", "", "read the course export from a file instead of Kattis")
	output := flag.StringP("output", "o", "course.json", "save the course export to a file instead of printing the report")
	flag.Bool("publish", false, "publish the report to RabbitMQ")
	flag.String("log-level", "warn", "log level (debug, info, warn, error, disabled)")
	flag.Parse()

	cfg, err := config.Load(config.Options{
		FlagSet: flag.CommandLine,
		Flags: map[string]string{
			"report.course_id": "courseid",
			"rabbitmq.enabled": "publish",
			"logging.level":    "log-level",
		},
		SkipFiles: *file != "",
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

	opts := app.CourseOptions{
		CourseID: *courseID,
		File:     *file,
	}
	if flag.CommandLine.Changed("output") {
		opts.DumpPath = *output
	}

	err = application.RunCourse(ctx, opts, os.Stdout)
	stop()
	application.Close()

	if err != nil {
		log.Debug().Err(err).Msg("Course report failed")
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, app.Describe(err))
	os.Exit(app.ExitCode(err))
}
