package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RubachokBoss/kattis-report/internal/config"
	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/RubachokBoss/kattis-report/internal/service"
	"github.com/RubachokBoss/kattis-report/internal/service/integration"
	"github.com/RubachokBoss/kattis-report/pkg/hash"
	"github.com/RubachokBoss/kattis-report/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type App struct {
	config         *config.Config
	logger         zerolog.Logger
	kattisClient   integration.KattisClient
	rabbitmqClient integration.RabbitMQClient
	authService    service.AuthService
	courseReport   service.CourseReportService
	standings      service.StandingsService
	hasher         *hash.Hasher
	now            func() time.Time
}

// Options lets callers replace the outbound clients, mainly in tests.
type Options struct {
	KattisClient   integration.KattisClient
	RabbitMQClient integration.RabbitMQClient
}

type CourseOptions struct {
	CourseID string
	// File reads the export from disk; no config or network is needed.
	File string
	// DumpPath writes the fetched export there instead of printing a report.
	DumpPath string
}

type SessionOptions struct {
	SessionID string
}

func New(cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	log = log.With().Str("run_id", uuid.NewString()).Logger()

	kattisClient := opts.KattisClient
	if kattisClient == nil {
		var err error
		kattisClient, err = integration.NewKattisClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, log)
		if err != nil {
			return nil, err
		}
	}

	rabbitmqClient := opts.RabbitMQClient
	if rabbitmqClient == nil && cfg.RabbitMQ.Enabled {
		var err error
		rabbitmqClient, err = integration.NewRabbitMQClient(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.RoutingKey,
			cfg.RabbitMQ.QueueName,
			log,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create RabbitMQ client: %w", err)
		}
	}

	return &App{
		config:         cfg,
		logger:         log,
		kattisClient:   kattisClient,
		rabbitmqClient: rabbitmqClient,
		authService:    service.NewAuthService(kattisClient, log),
		courseReport:   service.NewCourseReportService(log),
		standings:      service.NewStandingsService(log),
		hasher:         hash.NewHasher(hash.SHA256),
		now:            time.Now,
	}, nil
}

// RunCourse prints the solved-problem report of one course, or dumps its
// export when DumpPath is set.
func (a *App) RunCourse(ctx context.Context, opts CourseOptions, out io.Writer) error {
	if opts.File != "" && opts.DumpPath != "" {
		return ErrFileWithDump
	}

	courseID := opts.CourseID
	if courseID == "" {
		courseID = a.config.Report.CourseID
	}

	var raw []byte
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
		raw = data
		courseID = opts.File
	} else {
		if _, err := a.authService.Authenticate(ctx, a.config); err != nil {
			return err
		}

		endpoint, err := a.config.Endpoint()
		if err != nil {
			return err
		}

		raw, err = a.kattisClient.FetchCourseExport(ctx, endpoint.Hostname, courseID)
		if err != nil {
			return err
		}
	}

	digest, err := a.hasher.Sum(raw)
	if err != nil {
		return err
	}

	if opts.DumpPath != "" {
		if err := utils.WriteFile(opts.DumpPath, raw); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.DumpPath, err)
		}
		a.logger.Info().
			Str("path", opts.DumpPath).
			Str("digest", digest.String()).
			Msg("Course export written")
		return nil
	}

	export, err := a.courseReport.ParseExport(raw)
	if err != nil {
		return err
	}

	report, err := a.courseReport.Generate(export)
	if err != nil {
		return err
	}

	lines, err := report.Collect()
	if err != nil {
		return err
	}

	if err := writeLines(out, lines); err != nil {
		return err
	}

	return a.publish(ctx, models.ReportKindCourse, courseID, lines, digest)
}

// RunSession prints the standings table of one session.
func (a *App) RunSession(ctx context.Context, opts SessionOptions, out io.Writer) error {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = a.config.Report.SessionID
	}

	if _, err := a.authService.Authenticate(ctx, a.config); err != nil {
		return err
	}

	endpoint, err := a.config.Endpoint()
	if err != nil {
		return err
	}

	page, err := a.kattisClient.FetchSessionPage(ctx, endpoint.Hostname, sessionID)
	if err != nil {
		return err
	}

	standings, err := a.standings.Parse(bytes.NewReader(page))
	if err != nil {
		return err
	}

	if err := a.standings.Render(out, standings); err != nil {
		return err
	}

	lines := make([]string, 0, len(standings))
	for _, s := range standings {
		lines = append(lines, service.FormatStanding(s))
	}

	digest, err := a.hasher.Sum(page)
	if err != nil {
		return err
	}

	return a.publish(ctx, models.ReportKindSession, sessionID, lines, digest)
}

func (a *App) publish(ctx context.Context, kind models.ReportKind, target string, lines []string, digest hash.Digest) error {
	if a.rabbitmqClient == nil {
		return nil
	}

	event := &models.ReportGeneratedEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Lines:     lines,
		Digest:    digest.String(),
		Timestamp: a.now().Unix(),
	}

	return a.rabbitmqClient.PublishReportGenerated(ctx, event)
}

func (a *App) Close() error {
	if a.rabbitmqClient != nil {
		return a.rabbitmqClient.Close()
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
