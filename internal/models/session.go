package models

// Session is the durable per-browser credential cache.
// Token and User are saved and cleared together.
type Session struct {
	Token    string
	User     *User
	Identity string
}

// IsEmpty reports whether the session holds no usable credentials
func (s Session) IsEmpty() bool {
	return s.Token == "" || s.User == nil
}
