package models

// AuthUser is the identity-provider view of the signed-in user.
type AuthUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Label returns the best available human label for the user.
func (u *AuthUser) Label() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return EmailLocalPart(u.Email)
}

// EmailLocalPart returns the part of an email address before the '@'.
func EmailLocalPart(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}

// UserProfile is the denormalized profile written to users/{uid}/profile on
// every successful primary login.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	UpdatedAt   int64  `json:"updatedAt"`
}
