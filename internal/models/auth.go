package models

import "net/http"

type Credentials struct {
	Username string
	Password string
	Token    string
}

type Endpoint struct {
	Hostname       string
	LoginURL       string
	SubmissionURL  string
	SubmissionsURL string
}

// LoginResult is the raw outcome of a login POST. Callers decide whether the
// status code means success.
type LoginResult struct {
	StatusCode int
	Cookies    []*http.Cookie
}
