package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrMalformedExport is returned when a course export misses a field the
// report needs.
var ErrMalformedExport = errors.New("malformed course export")

// TrackedProblemKey is the only problem key read from each session's
// problem map. Courses exported this way have one tracked problem per
// session; other keys are neither read nor validated.
const TrackedProblemKey = "A"

// CourseExport mirrors /courses/<id>/export?type=results.
type CourseExport struct {
	Sessions []ExportSession     `json:"sessions"`
	Students []ExportParticipant `json:"students"`
	Teachers []ExportParticipant `json:"teachers"`
}

type ExportSession struct {
	Problems map[string]ExportProblem `json:"problems"`
	Results  []ExportResult           `json:"results"`
}

type ExportProblem struct {
	ProblemName *string `json:"problem_name"`
}

type ExportResult struct {
	Problems []ExportProblem `json:"problems"`
	Members  []string        `json:"members"`
}

type ExportParticipant struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
}

func (p ExportProblem) Name() string {
	if p.ProblemName == nil {
		return ""
	}
	return *p.ProblemName
}

func (p ExportParticipant) GetUsername() string {
	if p.Username == nil {
		return ""
	}
	return *p.Username
}

func (p ExportParticipant) GetName() string {
	if p.Name == nil {
		return ""
	}
	return *p.Name
}

// DecodeCourseExport decodes and validates an export. Field names must match
// exactly; encoding/json alone would accept "SESSIONS" for "sessions".
func DecodeCourseExport(raw []byte) (*CourseExport, error) {
	var export CourseExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	if err := checkFieldNames(doc); err != nil {
		return nil, err
	}

	if err := export.Validate(); err != nil {
		return nil, err
	}
	return &export, nil
}

func checkFieldNames(doc any) error {
	top, err := fieldsOf("", doc, "sessions", "students", "teachers")
	if err != nil {
		return err
	}

	for i, sv := range elems(top["sessions"]) {
		path := fmt.Sprintf("sessions[%d]", i)
		session, err := fieldsOf(path, sv, "problems", "results")
		if err != nil {
			return err
		}

		if problems, ok := session["problems"].(map[string]any); ok {
			if _, err := fieldsOf(path+".problems."+TrackedProblemKey, problems[TrackedProblemKey], "problem_name"); err != nil {
				return err
			}
		}

		for j, rv := range elems(session["results"]) {
			rpath := fmt.Sprintf("%s.results[%d]", path, j)
			result, err := fieldsOf(rpath, rv, "problems", "members")
			if err != nil {
				return err
			}
			for k, pv := range elems(result["problems"]) {
				if _, err := fieldsOf(fmt.Sprintf("%s.problems[%d]", rpath, k), pv, "problem_name"); err != nil {
					return err
				}
			}
		}
	}

	for _, field := range []string{"students", "teachers"} {
		for i, pv := range elems(top[field]) {
			if _, err := fieldsOf(fmt.Sprintf("%s[%d]", field, i), pv, "username", "name"); err != nil {
				return err
			}
		}
	}
	return nil
}

// fieldsOf rejects keys that differ from a known field only by case.
// Non-objects are left to the typed decode.
func fieldsOf(path string, v any, fields ...string) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}

	for _, key := range slices.Sorted(maps.Keys(obj)) {
		for _, field := range fields {
			if key != field && strings.EqualFold(key, field) {
				return nil, fmt.Errorf("%w: %s has %q, expected %q", ErrMalformedExport, joinPath(path), key, field)
			}
		}
	}
	return obj, nil
}

func elems(v any) []any {
	list, _ := v.([]any)
	return list
}

func joinPath(path string) string {
	if path == "" {
		return "export"
	}
	return path
}

// Validate reports the first missing field by its JSON path.
func (e *CourseExport) Validate() error {
	if e.Sessions == nil {
		return missing("sessions")
	}
	if e.Students == nil {
		return missing("students")
	}
	if e.Teachers == nil {
		return missing("teachers")
	}

	for i, s := range e.Sessions {
		if s.Problems == nil {
			return missing(fmt.Sprintf("sessions[%d].problems", i))
		}
		if p, ok := s.Problems[TrackedProblemKey]; ok && p.ProblemName == nil {
			return missing(fmt.Sprintf("sessions[%d].problems.%s.problem_name", i, TrackedProblemKey))
		}
		if s.Results == nil {
			return missing(fmt.Sprintf("sessions[%d].results", i))
		}
		for j, r := range s.Results {
			if r.Problems == nil {
				return missing(fmt.Sprintf("sessions[%d].results[%d].problems", i, j))
			}
			if r.Members == nil {
				return missing(fmt.Sprintf("sessions[%d].results[%d].members", i, j))
			}
			for k, p := range r.Problems {
				if p.ProblemName == nil {
					return missing(fmt.Sprintf("sessions[%d].results[%d].problems[%d].problem_name", i, j, k))
				}
			}
		}
	}

	if err := validateParticipants("students", e.Students); err != nil {
		return err
	}
	return validateParticipants("teachers", e.Teachers)
}

func validateParticipants(field string, list []ExportParticipant) error {
	for i, p := range list {
		if p.Username == nil {
			return missing(fmt.Sprintf("%s[%d].username", field, i))
		}
		if p.Name == nil {
			return missing(fmt.Sprintf("%s[%d].name", field, i))
		}
	}
	return nil
}

func missing(path string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedExport, path)
}
