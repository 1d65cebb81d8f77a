package models

// Standing is one row of a session standings table. Nil fields were not
// present in the row (header rows have neither user nor score).
type Standing struct {
	Position int     `json:"position"`
	Score    *string `json:"score"`
	User     *string `json:"user"`
	UserLink *string `json:"user_link"`
}
