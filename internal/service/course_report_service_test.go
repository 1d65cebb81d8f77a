package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/RubachokBoss/kattis-report/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSumExport = `{
	"sessions": [{
		"problems": {"A": {"problem_name": "Two Sum"}},
		"results": [{"problems": [{"problem_name": "Two Sum"}], "members": ["alice"]}]
	}],
	"students": [{"username": "alice", "name": "Alice A."}],
	"teachers": [{"username": "bob", "name": "Bob B."}]
}`

func generate(t *testing.T, raw string) *CourseReport {
	t.Helper()
	svc := NewCourseReportService(zerolog.Nop())

	export, err := svc.ParseExport([]byte(raw))
	require.NoError(t, err)

	report, err := svc.Generate(export)
	require.NoError(t, err)
	return report
}

func TestCourseReportTwoSumScenario(t *testing.T) {
	report := generate(t, twoSumExport)

	lines, err := report.Collect()
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice A.(alice) : Two Sum, ", "Bob B.(bob) : "}, lines)
}

func TestCourseReportLineCountIgnoresSessions(t *testing.T) {
	var sessions []string
	for i := 0; i < 7; i++ {
		sessions = append(sessions, fmt.Sprintf(`{
			"problems": {"A": {"problem_name": "P%d"}, "B": {"problem_name": "ignored"}},
			"results": [{"problems": [{"problem_name": "P%d"}], "members": ["s1", "t1"]}]
		}`, i, i))
	}
	raw := fmt.Sprintf(`{
		"sessions": [%s],
		"students": [{"username": "s1", "name": "One"}, {"username": "s2", "name": "Two"}],
		"teachers": [{"username": "t1", "name": "Teach"}]
	}`, strings.Join(sessions, ","))

	report := generate(t, raw)
	lines, err := report.Collect()
	require.NoError(t, err)

	assert.Equal(t, 3, report.Len())
	require.Len(t, lines, 3)
	assert.Equal(t, "One(s1) : P0, P1, P2, P3, P4, P5, P6, ", lines[0])
	assert.Equal(t, "Two(s2) : ", lines[1])
	assert.Equal(t, "Teach(t1) : P0, P1, P2, P3, P4, P5, P6, ", lines[2])
}

func TestCourseReportKeepsDuplicateCredits(t *testing.T) {
	raw := `{
		"sessions": [
			{"problems": {"A": {"problem_name": "Hello"}}, "results": [{"problems": [{"problem_name": "Hello"}], "members": ["alice"]}]},
			{"problems": {"A": {"problem_name": "Hello"}}, "results": [{"problems": [{"problem_name": "Hello"}], "members": ["alice", "alice"]}]}
		],
		"students": [{"username": "alice", "name": "Alice"}],
		"teachers": []
	}`

	lines, err := generate(t, raw).Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice(alice) : Hello, Hello, Hello, "}, lines)
}

func TestCourseReportIsIdempotent(t *testing.T) {
	first, err := generate(t, twoSumExport).Collect()
	require.NoError(t, err)

	second, err := generate(t, twoSumExport).Collect()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCourseReportDuplicateParticipantKeepsPositionTakesLastName(t *testing.T) {
	raw := `{
		"sessions": [],
		"students": [{"username": "bob", "name": "Bob Student"}, {"username": "alice", "name": "Alice"}],
		"teachers": [{"username": "bob", "name": "Bob Teacher"}]
	}`

	lines, err := generate(t, raw).Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Teacher(bob) : ", "Alice(alice) : "}, lines)
}

func TestCourseReportRoundTrip(t *testing.T) {
	svc := NewCourseReportService(zerolog.Nop())

	original, err := svc.ParseExport([]byte(twoSumExport))
	require.NoError(t, err)

	reserialized, err := utils.Reserialize([]byte(twoSumExport))
	require.NoError(t, err)

	again, err := svc.ParseExport(reserialized)
	require.NoError(t, err)
	assert.Equal(t, original, again)

	encoded, err := json.Marshal(again)
	require.NoError(t, err)
	third, err := svc.ParseExport(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, third)
}

func TestCourseReportErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		target error
	}{
		{
			name:   "not json",
			raw:    `{"sessions": `,
			target: ErrMalformedExport,
		},
		{
			name:   "wrong member type",
			raw:    `{"sessions":[{"problems":{"A":{"problem_name":"x"}},"results":[{"problems":[],"members":[1]}]}],"students":[],"teachers":[]}`,
			target: ErrMalformedExport,
		},
		{
			name:   "session without tracked problem",
			raw:    `{"sessions":[{"problems":{"B":{"problem_name":"x"}},"results":[]}],"students":[],"teachers":[]}`,
			target: ErrMalformedExport,
		},
		{
			name:   "unknown member",
			raw:    `{"sessions":[{"problems":{"A":{"problem_name":"x"}},"results":[{"problems":[{"problem_name":"x"}],"members":["mallory"]}]}],"students":[],"teachers":[]}`,
			target: ErrDataInconsistency,
		},
		{
			name:   "problem not tracked",
			raw:    `{"sessions":[{"problems":{"A":{"problem_name":"x"},"B":{"problem_name":"y"}},"results":[{"problems":[{"problem_name":"y"}],"members":["alice"]}]}],"students":[{"username":"alice","name":"Alice"}],"teachers":[]}`,
			target: ErrDataInconsistency,
		},
	}

	svc := NewCourseReportService(zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			export, err := svc.ParseExport([]byte(tt.raw))
			if err == nil {
				_, err = svc.Generate(export)
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestCourseReportUnresolvedOrdinalIsLineError(t *testing.T) {
	report := &CourseReport{
		problemNames: []string{"Two Sum"},
		order:        []string{"alice", "bob"},
		names:        map[string]string{"alice": "Alice", "bob": "Bob"},
		solved:       map[string][]int{"alice": {0}, "bob": {3}},
	}

	var got []string
	var errs []error
	for line, err := range report.Lines() {
		got = append(got, line)
		errs = append(errs, err)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "Alice(alice) : Two Sum, ", got[0])
	assert.NoError(t, errs[0])

	var ie *InconsistencyError
	require.True(t, errors.As(errs[1], &ie))
	assert.Equal(t, "problem ordinal", ie.Kind)

	_, err := report.Collect()
	assert.True(t, errors.Is(err, ErrDataInconsistency))
}

func TestCourseReportLinesStopsEarly(t *testing.T) {
	report := generate(t, twoSumExport)

	count := 0
	for range report.Lines() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestCourseReportIgnoresUnnamedUntrackedProblem(t *testing.T) {
	raw := `{
		"sessions": [{
			"problems": {"A": {"problem_name": "Two Sum"}, "B": {"shortname": "bonus"}},
			"results": [{"problems": [{"problem_name": "Two Sum"}], "members": ["alice"]}]
		}],
		"students": [{"username": "alice", "name": "Alice A."}],
		"teachers": []
	}`

	lines, err := generate(t, raw).Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice A.(alice) : Two Sum, "}, lines)
}

func TestGenerateValidatesExport(t *testing.T) {
	_, err := NewCourseReportService(zerolog.Nop()).Generate(&models.CourseExport{})
	assert.True(t, errors.Is(err, ErrMalformedExport))
}
