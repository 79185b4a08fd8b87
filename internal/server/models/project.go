package models

import (
	"encoding/json"
	"time"
)

// Project publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// DateLayout is the calendar-date format used for CompletionDate.
const DateLayout = time.DateOnly

// Project is a portfolio entry. Images are ordered and the first one is the
// thumbnail.
type Project struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	FullDescription  string    `json:"fullDescription"`
	ProblemSolved    *string   `json:"problemSolved"`
	Technologies     []string  `json:"technologies"`
	SiteURL          *string   `json:"siteUrl"`
	Images           []string  `json:"images"`
	CompletionDate   *Date     `json:"completionDate"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Date is a calendar date without a time zone. It is stored as the UTC
// midnight of that day and serialised as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date as seen in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}

// ProjectFilter selects which projects List returns.
type ProjectFilter int

const (
	ListAll ProjectFilter = iota
	ListPublished
)
