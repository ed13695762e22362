package types

// ------------------------------
// Request Payloads
// ------------------------------

// LoginRequest carries credentials for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries credentials for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetupUsernameRequest completes account setup after registration.
type SetupUsernameRequest struct {
	Username string `json:"username"`
}

// RefreshRequest carries the refresh token for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest carries the refresh token to revoke on POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// CreateProjectRequest creates a new project.
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest is a partial update; nil fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateUserRequest is a partial profile update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Img      *string `json:"img,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}
