package identity

// Identity is the normalized profile of the authenticated user together with
// the opaque bearer credential proving it to downstream services.
type Identity struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	AccessToken string `json:"-"` // never serialize the credential
}

// ProfileUpdate carries the fields a user may edit on their own profile.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// Clone returns a copy so readers can never mutate shared session state.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}

// Apply merges the update into the identity.
func (id *Identity) Apply(update ProfileUpdate) {
	if update.DisplayName != nil {
		id.DisplayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		id.PhotoURL = *update.PhotoURL
	}
}
