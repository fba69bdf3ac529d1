package models

// Identity is the opaque identity emitted by the identity provider on a
// successful authentication. It is immutable from the controller's side and
// absent while signed out.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}
