package domain

// Viewer is the identity a request acts as. It is resolved once per request
// from the session cookie and passed explicitly into every service call.
// A nil *Viewer is an anonymous visitor; all methods are nil-safe.
type Viewer struct {
	SessionID string
	User      *User
}

// IsAuthenticated reports whether the viewer is signed in.
func (v *Viewer) IsAuthenticated() bool {
	return v != nil && v.User != nil
}

// IsSuperuser reports whether the viewer may moderate content.
func (v *Viewer) IsSuperuser() bool {
	return v.IsAuthenticated() && v.User.IsSuperuser
}

// UserID returns the signed-in user's ID, or "" for anonymous viewers.
func (v *Viewer) UserID() string {
	if !v.IsAuthenticated() {
		return ""
	}
	return v.User.ID
}

// Owns reports whether the viewer is the user identified by ownerID.
// An empty ownerID (anonymous content) is owned by nobody.
func (v *Viewer) Owns(ownerID string) bool {
	return ownerID != "" && v.UserID() == ownerID
}
