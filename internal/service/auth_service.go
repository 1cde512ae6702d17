package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"crmventas/internal/apierror"
	"crmventas/internal/config"
	"crmventas/internal/dto"
	"crmventas/internal/identity"
	"crmventas/internal/model"
	"crmventas/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// Token types carried in the "typ" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrCredencialesInvalidas = errors.New("credenciales invalidas")
	ErrRefreshInvalido       = errors.New("refresh token invalido o expirado")
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(ctx context.Context, viewer Viewer) (*dto.UsuarioResponse, error)
	RegistrarUsuario(ctx context.Context, actor Viewer, req dto.RegistrarUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, actor Viewer, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, id uuid.UUID) error
	// Agentes lists the agents a supervisor is responsible for. Admins may
	// name any supervisor; an empty name lists every active agent.
	Agentes(ctx context.Context, viewer Viewer, supervisor string) ([]dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// usuarioDirectory exposes the user repository to the identity resolver.
type usuarioDirectory struct{ repo repository.UsuarioRepository }

func (d usuarioDirectory) FindByUsernameOrNombre(ctx context.Context, name string) (*identity.DirectoryEntry, error) {
	u, err := d.repo.FindByUsernameOrNombre(ctx, name)
	if err != nil || u == nil {
		return nil, err
	}
	return &identity.DirectoryEntry{ID: u.ID, Username: u.Username, Nombre: u.Nombre, Team: u.Team}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCredencialesInvalidas
	}
	if err != nil {
		return nil, translateDBError(err, "Usuario no encontrado")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrRefreshInvalido
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenRefresh {
		return nil, ErrRefreshInvalido
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrRefreshInvalido
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, ErrRefreshInvalido
	}
	return s.issueTokens(user)
}

func (s *authService) Me(ctx context.Context, viewer Viewer) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, viewer.ID)
	if err != nil {
		return nil, translateDBError(err, "Usuario no encontrado")
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) RegistrarUsuario(ctx context.Context, actor Viewer, req dto.RegistrarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if !actor.Rol.IsAdmin() {
		return nil, apierror.Authz("Solo un administrador puede registrar usuarios")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apierror.Validation("username y password son requeridos")
	}

	rol := identity.RolAgente
	if strings.TrimSpace(req.Role) != "" {
		r, err := identity.ParseRol(req.Role)
		if err != nil {
			return nil, apierror.Validation(err.Error())
		}
		rol = r
	}

	in := identity.Input{
		Team:             req.Team,
		Supervisor:       req.Supervisor,
		SupervisorNombre: req.SupervisorName,
	}
	if req.SupervisorID != nil && *req.SupervisorID != "" {
		id, err := uuid.Parse(*req.SupervisorID)
		if err != nil {
			return nil, apierror.Validation("supervisorId invalido")
		}
		in.SupervisorID = &id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apierror.Internal("Error interno del servidor", err)
	}

	nombre := strings.TrimSpace(req.Name)
	if nombre == "" {
		nombre = username
	}
	user := &model.Usuario{
		Username:     username,
		Nombre:       nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	s.applyResolution(ctx, user, in)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateDBError(err, "")
	}
	log.Info().
		Str("username", user.Username).
		Str("rol", user.Rol.String()).
		Str("team", user.Team).
		Str("registrado_por", actor.Username).
		Msg("auth: usuario registrado")

	resp := usuarioToResponse(user)
	return &resp, nil
}

// applyResolution runs the identity resolver for everyone but admins, who
// belong to no team unless one is given explicitly.
func (s *authService) applyResolution(ctx context.Context, user *model.Usuario, in identity.Input) {
	if user.Rol.IsAdmin() && in.Supervisor == "" && in.SupervisorNombre == "" {
		user.Team = identity.TeamFromCode(in.Team)
		user.Supervisor, user.SupervisorNombre, user.SupervisorID = "", "", nil
		return
	}
	res := identity.Resolve(ctx, in, usuarioDirectory{repo: s.repo})
	user.Team = res.Team
	user.Supervisor = res.SupervisorUsername
	user.SupervisorNombre = res.SupervisorNombre
	user.SupervisorID = res.SupervisorRef
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	var users []model.Usuario
	var err error
	if incluirInactivos {
		users, err = s.repo.ListAll(ctx)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, translateDBError(err, "")
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "Usuario no encontrado")
	}
	if req.Name != "" {
		user.Nombre = req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	rolChanged := false
	if req.Role != "" {
		r, err := identity.ParseRol(req.Role)
		if err != nil {
			return nil, apierror.Validation(err.Error())
		}
		rolChanged = r != user.Rol
		user.Rol = r
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, apierror.Internal("Error interno del servidor", err)
		}
		user.PasswordHash = string(hash)
	}

	if rolChanged || req.Team != nil || req.Supervisor != nil || req.SupervisorName != nil {
		in := identity.Input{Team: user.Team, Supervisor: user.Supervisor, SupervisorNombre: user.SupervisorNombre}
		if req.Team != nil {
			in.Team = *req.Team
		}
		if req.Supervisor != nil || req.SupervisorName != nil {
			in.Supervisor, in.SupervisorNombre = "", ""
			if req.Supervisor != nil {
				in.Supervisor = *req.Supervisor
			}
			if req.SupervisorName != nil {
				in.SupervisorNombre = *req.SupervisorName
			}
		}
		s.applyResolution(ctx, user, in)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateDBError(err, "Usuario no encontrado")
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, actor Viewer, id uuid.UUID) error {
	if actor.ID == id {
		return apierror.Validation("No puede desactivar su propio usuario")
	}
	return translateDBError(s.repo.SetActivo(ctx, id, false), "Usuario no encontrado")
}

func (s *authService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return translateDBError(s.repo.SetActivo(ctx, id, true), "Usuario no encontrado")
}

func (s *authService) Agentes(ctx context.Context, viewer Viewer, supervisor string) ([]dto.UsuarioResponse, error) {
	var users []model.Usuario
	var err error
	switch {
	case viewer.Rol == identity.RolSupervisor:
		users, err = s.repo.ListAgentes(ctx, viewer.ID, viewer.Team)
	case !viewer.Rol.SeesAll():
		return nil, apierror.Authz("Permisos insuficientes")
	case strings.TrimSpace(supervisor) != "":
		sup, ferr := s.repo.FindByUsernameOrNombre(ctx, strings.TrimSpace(supervisor))
		if ferr != nil {
			return nil, translateDBError(ferr, "")
		}
		if sup == nil {
			return nil, apierror.NotFound("Supervisor no encontrado")
		}
		users, err = s.repo.ListAgentes(ctx, sup.ID, sup.Team)
	default:
		var all []model.Usuario
		all, err = s.repo.List(ctx)
		for _, u := range all {
			if u.Rol == identity.RolAgente {
				users = append(users, u)
			}
		}
	}
	if err != nil {
		return nil, translateDBError(err, "")
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) issueTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, typ string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"nombre":   user.Nombre,
		"rol":      user.Rol.String(),
		"team":     user.Team,
		"typ":      typ,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ── helpers ──────────────────────────────────────────────────────────────────

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	resp := dto.UsuarioResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Name:           u.Nombre,
		Email:          u.Email,
		Role:           u.Rol.String(),
		Team:           u.Team,
		Supervisor:     u.Supervisor,
		SupervisorName: u.SupervisorNombre,
		Activo:         u.Activo,
	}
	if u.SupervisorID != nil {
		id := u.SupervisorID.String()
		resp.SupervisorID = &id
	}
	return resp
}
