package model

// UserType distinguishes player accounts from developer accounts
type UserType string

const (
	UserTypePlayer UserType = "player"
	UserTypeDev    UserType = "dev"
)

// User is an account record in the users collection. Passwords are stored
// and compared as opaque strings; the lobby never interprets them.
type User struct {
	Password string         `json:"pwd"`
	Data     map[string]any `json:"data"`
}

// UserTable is the shape of the users collection document: account maps
// keyed by username, one per account type.
type UserTable struct {
	Players map[string]User `json:"players"`
	Devs    map[string]User `json:"devs"`
}

// Identity is an authenticated principal: the account type plus the
// username it logged in as.
type Identity struct {
	Type UserType `json:"type"`
	ID   string   `json:"id"`
}

// IsZero reports whether the identity is unauthenticated
func (i Identity) IsZero() bool {
	return i.ID == ""
}
