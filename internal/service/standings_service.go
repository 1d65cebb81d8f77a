package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/rs/zerolog"
)

const (
	standingsSelector = `table[id="standings"]`
	userSelector      = `td>a[href]`
	scoreSelector     = `td[class="total score"]`
)

type StandingsService interface {
	Parse(r io.Reader) ([]models.Standing, error)
	Render(w io.Writer, standings []models.Standing) error
}

type standingsService struct {
	logger zerolog.Logger
}

func NewStandingsService(logger zerolog.Logger) StandingsService {
	return &standingsService{logger: logger}
}

// Parse reads every row of the standings table. Rows without a user link or
// a total score cell are kept with nil fields so positions never shift.
func (s *standingsService) Parse(r io.Reader) ([]models.Standing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session page: %w", err)
	}

	table := doc.Find(standingsSelector).First()
	if table.Length() == 0 {
		return nil, ErrStandingsNotFound
	}

	rows := table.Find("tr")
	standings := make([]models.Standing, 0, rows.Length())

	rows.Each(func(i int, row *goquery.Selection) {
		standing := models.Standing{Position: i}

		if user := row.Find(userSelector).First(); user.Length() > 0 {
			name := strings.TrimSpace(user.Text())
			link, _ := user.Attr("href")
			standing.User = &name
			standing.UserLink = &link
		}

		if score := row.Find(scoreSelector).First(); score.Length() > 0 {
			text := strings.TrimSpace(score.Text())
			standing.Score = &text
		}

		standings = append(standings, standing)
	})

	s.logger.Debug().Int("rows", len(standings)).Msg("Standings table parsed")

	return standings, nil
}

func (s *standingsService) Render(w io.Writer, standings []models.Standing) error {
	for _, standing := range standings {
		if _, err := fmt.Fprintln(w, FormatStanding(standing)); err != nil {
			return err
		}
	}
	return nil
}

// FormatStanding prints a row as [position, score, user, link] with missing
// cells as null.
func FormatStanding(s models.Standing) string {
	return fmt.Sprintf("[%d, %s, %s, %s]", s.Position, quoteOrNull(s.Score), quoteOrNull(s.User), quoteOrNull(s.UserLink))
}

func quoteOrNull(s *string) string {
	if s == nil {
		return "null"
	}
	return strconv.Quote(*s)
}
