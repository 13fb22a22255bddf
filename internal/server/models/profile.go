package models

import "time"

// ProfileOwner is the public projection of the owning user, joined on read.
type ProfileOwner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type SocialLinks struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Profile is the public document owned by exactly one user.
// Experience and Education are ordered newest first.
type Profile struct {
	ID             string       `json:"id"`
	User           ProfileOwner `json:"user"`
	Handle         string       `json:"handle"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `json:"status"`
	Bio            string       `json:"bio,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty"`
	Skills         []string     `json:"skills"`
	Social         SocialLinks  `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"date"`
}

type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// ProfilePatch is a merge patch over the scalar part of a Profile.
// A nil field is left untouched; a non-nil empty string clears the field.
type ProfilePatch struct {
	Handle         *string
	Company        *string
	Website        *string
	Location       *string
	Status         *string
	Bio            *string
	GitHubUsername *string
	Skills         *[]string

	YouTube   *string
	Twitter   *string
	Facebook  *string
	LinkedIn  *string
	Instagram *string
}

// Apply writes every provided field of the patch onto p.
func (pp *ProfilePatch) Apply(p *Profile) {
	if pp == nil {
		return
	}
	set(&p.Handle, pp.Handle)
	set(&p.Company, pp.Company)
	set(&p.Website, pp.Website)
	set(&p.Location, pp.Location)
	set(&p.Status, pp.Status)
	set(&p.Bio, pp.Bio)
	set(&p.GitHubUsername, pp.GitHubUsername)
	if pp.Skills != nil {
		p.Skills = append([]string(nil), (*pp.Skills)...)
	}
	set(&p.Social.YouTube, pp.YouTube)
	set(&p.Social.Twitter, pp.Twitter)
	set(&p.Social.Facebook, pp.Facebook)
	set(&p.Social.LinkedIn, pp.LinkedIn)
	set(&p.Social.Instagram, pp.Instagram)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// RemoveResult reports the outcome of an idempotent sub-entry removal.
type RemoveResult int

const (
	Removed RemoveResult = iota + 1
	NotFound
)

func (r RemoveResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
