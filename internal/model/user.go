package model

// User is a member of the workspace.
type User struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	AvatarURL string `json:"avatar_url,omitempty" db:"avatar_url"`
}
