package domain

import "strings"

// BirthdateLayout is the wire format of User.Birthdate.
const BirthdateLayout = "2006-01-02"

// User mirrors the user service's representation.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	Birthdate  string `json:"birthdate"`
	Photo      string `json:"photo"`
	Points     int    `json:"lottery_points"`
	Badwords   string `json:"badwords,omitempty"`
	Blacklist  string `json:"blacklist,omitempty"`
	IsActive   bool   `json:"is_active"`
	IsReported bool   `json:"is_reported"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

// NewUser is the registration payload for POST /user.
type NewUser struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Birthdate string `json:"birthdate"`
	Photo     string `json:"photo"`
	Badwords  string `json:"badwords"`
}

// UserUpdate is the payload for PUT /user/{id}. Empty Password keeps the old one.
type UserUpdate struct {
	Password  string `json:"password,omitempty"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Birthdate string `json:"birthdate"`
	Photo     string `json:"photo"`
	Badwords  string `json:"badwords"`
	Blacklist string `json:"blacklist"`
}

// SplitList turns a comma separated profile field into its trimmed entries.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
