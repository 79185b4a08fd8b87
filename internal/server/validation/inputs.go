package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=5"`
	Message string `json:"message" validate:"required,min=10"`
}

// TagList decodes technologies given either as a comma separated string or
// as an array. Entries are trimmed and blank ones dropped.
type TagList []string

var tagListType = reflect.TypeOf(TagList(nil))

func (t *TagList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = nil
		return nil
	}

	var raw []string
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		raw = strings.Split(s, ",")
	} else if err := json.Unmarshal(b, &raw); err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(b), Type: tagListType}
	}

	out := make(TagList, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	*t = out
	return nil
}

// ProjectInput is the create/update payload of a project.
type ProjectInput struct {
	Title            string   `json:"title" validate:"required,min=3"`
	ShortDescription string   `json:"shortDescription" validate:"required,min=10"`
	FullDescription  string   `json:"fullDescription" validate:"required,min=20"`
	ProblemSolved    string   `json:"problemSolved"`
	Technologies     TagList  `json:"technologies" validate:"min=1"`
	SiteURL          string   `json:"siteUrl" validate:"omitempty,http_url"`
	Images           []string `json:"images" validate:"dive,http_url"`
	CompletionDate   string   `json:"completionDate" validate:"omitempty,calendardate"`
	Status           string   `json:"status" validate:"omitempty,oneof=published draft"`
}

// Project validates the input and converts it to a project record. Omitted
// status becomes draft; empty optional fields become absent.
func (in *ProjectInput) Project() (*models.Project, error) {
	if err := Struct(in); err != nil {
		return nil, err
	}

	p := &models.Project{
		Title:            in.Title,
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		Technologies:     []string(in.Technologies),
		Images:           in.Images,
		Status:           in.Status,
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if in.ProblemSolved != "" {
		s := in.ProblemSolved
		p.ProblemSolved = &s
	}
	if in.SiteURL != "" {
		s := in.SiteURL
		p.SiteURL = &s
	}
	if in.CompletionDate != "" {
		d, err := ParseCalendarDate(in.CompletionDate)
		if err != nil {
			return nil, NewError("completionDate", messages["calendardate"])
		}
		p.CompletionDate = &d
	}

	return p, nil
}
