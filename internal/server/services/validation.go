package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/go-playground/validator/v10"
)

// Accepted input layouts for experience and education dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	return v
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// messages maps "field.tag" to the user-facing message.
var messages = map[string]string{
	"name.required":         "Name field is required",
	"name.min":              "Name must be between 2 and 30 characters",
	"name.max":              "Name must be between 2 and 30 characters",
	"email.required":        "Email field is required",
	"email.email":           "Email is invalid",
	"password.required":     "Password field is required",
	"password.min":          "Password must be between 6 and 30 characters",
	"password.max":          "Password must be between 6 and 30 characters",
	"password.bytes":        "Password is too long",
	"handle.required":       "Profile handle is required",
	"handle.min":            "Handle needs to be between 2 and 40 characters",
	"handle.max":            "Handle needs to be between 2 and 40 characters",
	"status.required":       "Status field is required",
	"skills.required":       "Skills field is required",
	"title.required":        "Job title field is required",
	"company.required":      "Company field is required",
	"location.required":     "Location field is required",
	"school.required":       "School field is required",
	"degree.required":       "Degree field is required",
	"fieldofstudy.required": "Field of study field is required",
	"from.required":         "From date field is required",
	"from.date":             "From date is not valid",
	"to.date":               "To date is not valid",
	"to.after":              "To date must not be before from date",
	"text.required":         "Text field is required",
	"text.min":              "Post must be between 10 and 300 characters",
	"text.max":              "Post must be between 10 and 300 characters",
}

func message(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	if tag == "url" {
		return "Not a valid URL"
	}
	return fmt.Sprintf("%s is invalid", field)
}

// fieldErrors collects the first failure per field.
type fieldErrors map[string]string

// check validates value against tags and records a message under field.
func (fe fieldErrors) check(field, value, tags string) {
	if _, seen := fe[field]; seen {
		return
	}
	err := validate.Var(value, tags)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe[field] = message(field, verrs[0].Tag())
		return
	}
	fe[field] = message(field, "invalid")
}

func (fe fieldErrors) add(field, tag string) {
	if _, seen := fe[field]; !seen {
		fe[field] = message(field, tag)
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &common.ValidationError{Fields: fe}
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) validate() error {
	fe := fieldErrors{}
	fe.check("name", strings.TrimSpace(in.Name), "required,min=2,max=30")
	fe.check("email", strings.TrimSpace(in.Email), "required,email")
	fe.check("password", in.Password, "required,min=6,max=30")
	if len(in.Password) > auth.MaxPasswordBytes {
		fe.add("password", "bytes")
	}
	return fe.err()
}

// LoginInput is the payload of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) validate() error {
	fe := fieldErrors{}
	fe.check("email", strings.TrimSpace(in.Email), "required,email")
	fe.check("password", in.Password, "required")
	return fe.err()
}

// ProfileInput is a profile submission. Omitted (nil) fields are left
// untouched on update; an empty string clears an optional field. Skills is
// a comma-separated list.
type ProfileInput struct {
	Handle         *string `json:"handle"`
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Status         *string `json:"status"`
	Bio            *string `json:"bio"`
	GitHubUsername *string `json:"githubusername"`
	Skills         *string `json:"skills"`

	YouTube   *string `json:"youtube"`
	Twitter   *string `json:"twitter"`
	Facebook  *string `json:"facebook"`
	LinkedIn  *string `json:"linkedin"`
	Instagram *string `json:"instagram"`
}

// validate checks the input. When creating, handle, status and skills are
// required; otherwise only provided fields are checked.
func (in *ProfileInput) validate(creating bool) error {
	fe := fieldErrors{}

	required := func(field string, v *string, tags string) {
		switch {
		case v != nil:
			fe.check(field, strings.TrimSpace(*v), tags)
		case creating:
			fe.add(field, "required")
		}
	}
	required("handle", in.Handle, "required,min=2,max=40")
	required("status", in.Status, "required")
	if in.Skills != nil && len(splitSkills(*in.Skills)) == 0 {
		fe.add("skills", "required")
	} else if in.Skills == nil && creating {
		fe.add("skills", "required")
	}

	for field, v := range map[string]*string{
		"website":   in.Website,
		"youtube":   in.YouTube,
		"twitter":   in.Twitter,
		"facebook":  in.Facebook,
		"linkedin":  in.LinkedIn,
		"instagram": in.Instagram,
	} {
		if v != nil {
			fe.check(field, strings.TrimSpace(*v), "omitempty,url")
		}
	}
	return fe.err()
}

// patch converts the input into a merge patch with normalized values.
func (in *ProfileInput) patch() *models.ProfilePatch {
	p := &models.ProfilePatch{
		Handle:         trimmed(in.Handle),
		Company:        trimmed(in.Company),
		Website:        trimmed(in.Website),
		Location:       trimmed(in.Location),
		Status:         trimmed(in.Status),
		Bio:            trimmed(in.Bio),
		GitHubUsername: trimmed(in.GitHubUsername),
		YouTube:        trimmed(in.YouTube),
		Twitter:        trimmed(in.Twitter),
		Facebook:       trimmed(in.Facebook),
		LinkedIn:       trimmed(in.LinkedIn),
		Instagram:      trimmed(in.Instagram),
	}
	if in.Skills != nil {
		skills := splitSkills(*in.Skills)
		p.Skills = &skills
	}
	return p
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// splitSkills splits a comma-separated list, trimming entries and dropping
// empty ones.
func splitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExperienceInput is a new experience entry. Dates are "2006-01-02" or RFC 3339.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

func (in *ExperienceInput) toModel() (*models.Experience, error) {
	fe := fieldErrors{}
	fe.check("title", strings.TrimSpace(in.Title), "required")
	fe.check("company", strings.TrimSpace(in.Company), "required")
	fe.check("location", strings.TrimSpace(in.Location), "required")
	from, to := checkPeriod(fe, in.From, in.To, in.Current)
	if err := fe.err(); err != nil {
		return nil, err
	}
	return &models.Experience{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

// EducationInput is a new education entry.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (in *EducationInput) toModel() (*models.Education, error) {
	fe := fieldErrors{}
	fe.check("school", strings.TrimSpace(in.School), "required")
	fe.check("degree", strings.TrimSpace(in.Degree), "required")
	fe.check("fieldofstudy", strings.TrimSpace(in.FieldOfStudy), "required")
	from, to := checkPeriod(fe, in.From, in.To, in.Current)
	if err := fe.err(); err != nil {
		return nil, err
	}
	return &models.Education{
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  strings.TrimSpace(in.Description),
	}, nil
}

// checkPeriod validates a from/to pair. A current entry has no end date.
func checkPeriod(fe fieldErrors, fromRaw, toRaw string, current bool) (time.Time, *time.Time) {
	fromRaw, toRaw = strings.TrimSpace(fromRaw), strings.TrimSpace(toRaw)

	fe.check("from", fromRaw, "required,date")
	if current || toRaw == "" {
		return mustDate(fromRaw), nil
	}
	fe.check("to", toRaw, "date")

	from, to := mustDate(fromRaw), mustDate(toRaw)
	if _, bad := fe["from"]; !bad {
		if _, bad := fe["to"]; !bad && to.Before(from) {
			fe.add("to", "after")
		}
	}
	return from, &to
}

func mustDate(s string) time.Time {
	t, _ := parseDate(s)
	return t
}

// PostInput is the payload of a post or comment.
type PostInput struct {
	Text string `json:"text"`
}

func (in *PostInput) validate() error {
	fe := fieldErrors{}
	fe.check("text", strings.TrimSpace(in.Text), "required,min=10,max=300")
	return fe.err()
}
