package identity

import "fmt"

// Rol is the closed set of roles a user can hold. Role strings from payloads,
// tokens and legacy rows are parsed into a Rol as soon as they enter the system.
type Rol string

const (
	RolAdmin      Rol = "admin"
	RolSupervisor Rol = "supervisor"
	RolAgente     Rol = "agente"
	RolBackoffice Rol = "backoffice"
)

var rolAliases = map[string]Rol{
	"ADMIN":         RolAdmin,
	"ADMINISTRADOR": RolAdmin,
	"ADMINISTRATOR": RolAdmin,
	"SUPERVISOR":    RolSupervisor,
	"AGENTE":        RolAgente,
	"AGENT":         RolAgente,
	"VENDEDOR":      RolAgente,
	"BACKOFFICE":    RolBackoffice,
	"BACK OFFICE":   RolBackoffice,
	"BACK-OFFICE":   RolBackoffice,
}

// ParseRol maps any historical spelling of a role to its Rol.
func ParseRol(s string) (Rol, error) {
	if r, ok := rolAliases[Canon(s)]; ok {
		return r, nil
	}
	return "", fmt.Errorf("rol desconocido: %q", s)
}

// IsAdmin reports whether the role may administer users.
func (r Rol) IsAdmin() bool { return r == RolAdmin }

// SeesAll reports whether the role can read every team's data.
func (r Rol) SeesAll() bool { return r == RolAdmin || r == RolBackoffice }

func (r Rol) String() string { return string(r) }
