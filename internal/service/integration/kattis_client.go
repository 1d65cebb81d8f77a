package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/RubachokBoss/kattis-report/pkg/utils"
	"github.com/rs/zerolog"
)

type KattisClient interface {
	Login(ctx context.Context, endpoint models.Endpoint, creds models.Credentials) (*models.LoginResult, error)
	FetchCourseExport(ctx context.Context, hostname, courseID string) ([]byte, error)
	FetchSessionPage(ctx context.Context, hostname, sessionID string) ([]byte, error)
}

type kattisClient struct {
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewKattisClient returns a client whose cookie jar carries the login
// session into later requests.
func NewKattisClient(timeout time.Duration, userAgent string, logger zerolog.Logger) (KattisClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &kattisClient{
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

func (c *kattisClient) Login(ctx context.Context, endpoint models.Endpoint, creds models.Credentials) (*models.LoginResult, error) {
	form := url.Values{
		"user":   {creds.Username},
		"script": {"true"},
	}
	if creds.Password != "" {
		form.Set("password", creds.Password)
	}
	if creds.Token != "" {
		form.Set("token", creds.Token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "Login", URL: endpoint.LoginURL, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.logger.Debug().
		Str("url", endpoint.LoginURL).
		Str("user", creds.Username).
		Int("status", resp.StatusCode).
		Msg("Login request finished")

	return &models.LoginResult{
		StatusCode: resp.StatusCode,
		Cookies:    resp.Cookies(),
	}, nil
}

// FetchCourseExport returns the course results export, parsed and encoded
// again so that only valid JSON leaves this function.
func (c *kattisClient) FetchCourseExport(ctx context.Context, hostname, courseID string) ([]byte, error) {
	u := fmt.Sprintf("%s/courses/%s/export?type=results&submissions=lastaccepted", baseURL(hostname), courseID)

	body, err := c.get(ctx, "Json download", u)
	if err != nil {
		return nil, err
	}

	out, err := utils.Reserialize(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedExport, err)
	}

	c.logger.Info().
		Str("course_id", courseID).
		Int("bytes", len(out)).
		Msg("Course export downloaded")

	return out, nil
}

// FetchSessionPage returns the server-rendered standings fragment of a
// session. No script on the page is executed.
func (c *kattisClient) FetchSessionPage(ctx context.Context, hostname, sessionID string) ([]byte, error) {
	u := fmt.Sprintf("%s/sessions/%s?ajax=1", baseURL(hostname), sessionID)

	body, err := c.get(ctx, "Session download", u)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("session_id", sessionID).
		Int("bytes", len(body)).
		Msg("Session page downloaded")

	return body, nil
}

func (c *kattisClient) get(ctx context.Context, op, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: u, Err: err}
	}

	c.logger.Debug().Str("url", u).Int("status", resp.StatusCode).Msg("GET finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, u, resp.StatusCode)
	}

	return body, nil
}

// baseURL accepts a bare hostname or one that already carries a scheme.
func baseURL(hostname string) string {
	hostname = strings.TrimRight(hostname, "/")
	if strings.HasPrefix(hostname, "http://") || strings.HasPrefix(hostname, "https://") {
		return hostname
	}
	return "https://" + hostname
}
