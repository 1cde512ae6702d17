package service

import (
	"errors"
	"net"
	"strings"

	"crmventas/internal/apierror"
	"crmventas/internal/identity"
	"crmventas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Viewer is the authenticated caller of a request, taken from its access token.
type Viewer struct {
	ID       uuid.UUID
	Username string
	Nombre   string
	Rol      identity.Rol
	Team     string
}

// leadScope limits what the viewer can read: agents see their own leads,
// supervisors their team, admins and back office everything. A supervisor
// without a team, or an agent without a username, sees nothing.
func (v Viewer) leadScope() repository.LeadScope {
	switch {
	case v.Rol.SeesAll():
		return repository.LeadScope{}
	case v.Rol == identity.RolSupervisor:
		if strings.TrimSpace(v.Team) == "" {
			return repository.LeadScope{None: true}
		}
		return repository.LeadScope{Team: v.Team}
	default:
		if strings.TrimSpace(v.Username) == "" {
			return repository.LeadScope{None: true}
		}
		return repository.LeadScope{Agente: v.Username}
	}
}

// translateDBError converts a repository error into the API taxonomy.
func translateDBError(err error, notFoundMsg string) error {
	var netErr net.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NotFound(notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Conflict("El registro ya existe", err)
	case errors.As(err, &netErr):
		return apierror.Unavailable("Base de datos no disponible", err)
	default:
		return apierror.Internal("Error interno del servidor", err)
	}
}
