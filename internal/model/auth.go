package model

// User is the identity attached to an AuthToken.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthToken is the persisted session. ExpiresAt is Unix milliseconds.
type AuthToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      *User  `json:"user"`
}

// Complete reports whether every required field is present.
func (t AuthToken) Complete() bool {
	return t.Token != "" && t.ExpiresAt != 0 && t.User != nil
}
