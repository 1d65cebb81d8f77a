package service

import (
	"fmt"
	"iter"
	"strings"

	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/rs/zerolog"
)

const TrackedProblemKey = models.TrackedProblemKey

type CourseReportService interface {
	ParseExport(raw []byte) (*models.CourseExport, error)
	Generate(export *models.CourseExport) (*CourseReport, error)
}

type courseReportService struct {
	logger zerolog.Logger
}

func NewCourseReportService(logger zerolog.Logger) CourseReportService {
	return &courseReportService{logger: logger}
}

func (s *courseReportService) ParseExport(raw []byte) (*models.CourseExport, error) {
	return models.DecodeCourseExport(raw)
}

func (s *courseReportService) Generate(export *models.CourseExport) (*CourseReport, error) {
	if err := export.Validate(); err != nil {
		return nil, err
	}

	report := &CourseReport{
		problemIDs: make(map[string]int),
		names:      make(map[string]string),
		solved:     make(map[string][]int),
	}

	for i, session := range export.Sessions {
		problem, ok := session.Problems[TrackedProblemKey]
		if !ok {
			return nil, fmt.Errorf("%w: sessions[%d] has no problem %q", ErrMalformedExport, i, TrackedProblemKey)
		}

		name := problem.Name()
		if _, seen := report.problemIDs[name]; !seen {
			report.problemIDs[name] = len(report.problemNames)
			report.problemNames = append(report.problemNames, name)
		}
	}

	for _, p := range export.Students {
		report.addParticipant(p)
	}
	for _, p := range export.Teachers {
		report.addParticipant(p)
	}

	for _, session := range export.Sessions {
		for _, result := range session.Results {
			for _, problem := range result.Problems {
				for _, member := range result.Members {
					if err := report.credit(member, problem.Name()); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	s.logger.Debug().
		Int("sessions", len(export.Sessions)).
		Int("problems", len(report.problemNames)).
		Int("participants", len(report.order)).
		Msg("Course report generated")

	return report, nil
}

// CourseReport holds the indices built from one course export.
type CourseReport struct {
	problemIDs   map[string]int
	problemNames []string

	order  []string
	names  map[string]string
	solved map[string][]int
}

// addParticipant keeps the first position of a username; a later entry for
// the same username replaces its display name.
func (r *CourseReport) addParticipant(p models.ExportParticipant) {
	username := p.GetUsername()
	if _, ok := r.names[username]; !ok {
		r.order = append(r.order, username)
	}
	r.names[username] = p.GetName()
	r.solved[username] = []int{}
}

func (r *CourseReport) credit(member, problem string) error {
	id, ok := r.problemIDs[problem]
	if !ok {
		return &InconsistencyError{Kind: "problem", Ref: problem}
	}
	if _, ok := r.solved[member]; !ok {
		return &InconsistencyError{Kind: "member", Ref: member}
	}

	r.solved[member] = append(r.solved[member], id)
	return nil
}

// Len is the number of lines Lines yields.
func (r *CourseReport) Len() int {
	return len(r.order)
}

// Lines yields one "<name>(<username>) : <p1>, <p2>, " line per
// participant, students first, in export order.
func (r *CourseReport) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, username := range r.order {
			line, err := r.line(username)
			if !yield(line, err) {
				return
			}
		}
	}
}

func (r *CourseReport) line(username string) (string, error) {
	var b strings.Builder
	b.WriteString(r.names[username])
	b.WriteString("(")
	b.WriteString(username)
	b.WriteString(") : ")

	for _, id := range r.solved[username] {
		if id < 0 || id >= len(r.problemNames) {
			return "", &InconsistencyError{Kind: "problem ordinal", Ref: fmt.Sprint(id)}
		}
		b.WriteString(r.problemNames[id])
		b.WriteString(", ")
	}

	return b.String(), nil
}

// Collect returns all lines, or the first error.
func (r *CourseReport) Collect() ([]string, error) {
	lines := make([]string, 0, r.Len())
	for line, err := range r.Lines() {
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
