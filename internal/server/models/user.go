package models

import "time"

// User is a registered forum member. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Password             string     `json:"-"`
	Bio                  *string    `json:"bio"`
	WebsiteURL           *string    `json:"websiteUrl"`
	PortfolioURL         *string    `json:"portfolioUrl"`
	ProgrammingLanguages StringList `json:"programmingLanguages"`
	Expertise            StringList `json:"expertise"`
	Avatar               *string    `json:"avatar"`
	Reputation           int        `json:"reputation"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// UserUpdate is a partial profile edit; nil fields are left untouched.
type UserUpdate struct {
	Name                 *string     `json:"name"`
	Bio                  *string     `json:"bio"`
	WebsiteURL           *string     `json:"websiteUrl"`
	PortfolioURL         *string     `json:"portfolioUrl"`
	ProgrammingLanguages *StringList `json:"programmingLanguages"`
	Expertise            *StringList `json:"expertise"`
	Avatar               *string     `json:"avatar"`
}

func (u *User) Apply(upd UserUpdate) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	if upd.WebsiteURL != nil {
		u.WebsiteURL = upd.WebsiteURL
	}
	if upd.PortfolioURL != nil {
		u.PortfolioURL = upd.PortfolioURL
	}
	if upd.ProgrammingLanguages != nil {
		u.ProgrammingLanguages = *upd.ProgrammingLanguages
	}
	if upd.Expertise != nil {
		u.Expertise = *upd.Expertise
	}
	if upd.Avatar != nil {
		u.Avatar = upd.Avatar
	}
}

// PublicUser is the author summary embedded in thread and post listings.
type PublicUser struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Avatar     *string `json:"avatar"`
	Reputation int     `json:"reputation"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Reputation: u.Reputation}
}
