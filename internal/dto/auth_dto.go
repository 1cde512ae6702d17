package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegistrarUsuarioRequest keeps the field names of the historical dashboard
// form. username and password are checked by the service so the caller gets
// one message for both.
type RegistrarUsuarioRequest struct {
	Username       string  `json:"username"       validate:"omitempty,max=150"`
	Password       string  `json:"password"`
	Name           string  `json:"name"           validate:"omitempty,max=150"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Role           string  `json:"role"`
	Team           string  `json:"team"           validate:"omitempty,max=80"`
	Supervisor     string  `json:"supervisor"     validate:"omitempty,max=150"`
	SupervisorName string  `json:"supervisorName" validate:"omitempty,max=150"`
	SupervisorID   *string `json:"supervisorId"   validate:"omitempty,uuid"`
}

type ActualizarUsuarioRequest struct {
	Name           string  `json:"name"           validate:"omitempty,min=2,max=150"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Role           string  `json:"role"`
	Team           *string `json:"team"           validate:"omitempty,max=80"`
	Supervisor     *string `json:"supervisor"     validate:"omitempty,max=150"`
	SupervisorName *string `json:"supervisorName" validate:"omitempty,max=150"`
	Password       string  `json:"password"       validate:"omitempty,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	Email          *string `json:"email"`
	Role           string  `json:"role"`
	Team           string  `json:"team"`
	Supervisor     string  `json:"supervisor"`
	SupervisorName string  `json:"supervisorName"`
	SupervisorID   *string `json:"supervisorId"`
	Activo         bool    `json:"activo"`
}

type LoginResponse struct {
	Success      bool            `json:"success"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}

type UsuarioListResponse struct {
	Success bool              `json:"success"`
	Data    []UsuarioResponse `json:"data"`
}
