package models

type ReportKind string

const (
	ReportKindCourse  ReportKind = "course"
	ReportKindSession ReportKind = "session"
)

type ReportGeneratedEvent struct {
	ID        string     `json:"id"`
	Kind      ReportKind `json:"kind"`
	Target    string     `json:"target"`
	Lines     []string   `json:"lines"`
	Digest    string     `json:"digest,omitempty"`
	Timestamp int64      `json:"timestamp"`
}
