package types

// Session is the local projection of an authenticated session. The
// identity gateway owns the credential itself; the application only
// ever sees this triple.
type Session struct {
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Viewer converts the session into the viewer identity consumed by the
// policy layer.
func (s Session) Viewer() Viewer {
	return Viewer{UserID: s.UserID, Name: s.DisplayName, Role: s.Role}
}
