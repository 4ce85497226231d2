package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalUsername is the username given to the generated local user.
const LocalUsername = "local"

// User is the author recorded on projects created and saved locally.
type User struct {
	ID                string `json:"_id"`
	Username          string `json:"username"`
	UsernameLowercase string `json:"usernameLowercase"`
	ProfileTheme      string `json:"profile_theme,omitempty"`
	Theme             string `json:"theme,omitempty"`
	IsStaff           bool   `json:"isStaff"`
	IsAdmin           bool   `json:"isAdmin"`
	Created           int64  `json:"created"`
}

// NewLocalUser generates the single local user of this installation.
func NewLocalUser(now time.Time) User {
	return User{
		ID:                uuid.NewString(),
		Username:          LocalUsername,
		UsernameLowercase: strings.ToLower(LocalUsername),
		ProfileTheme:      "dark",
		Theme:             "dark",
		Created:           now.UnixMilli(),
	}
}
