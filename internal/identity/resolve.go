package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DirectoryEntry is the slice of a user account the resolver needs.
type DirectoryEntry struct {
	ID       uuid.UUID
	Username string
	Nombre   string
	Team     string
}

// Directory looks up an account whose username or display name equals name
// (case-insensitive, whole string). It returns (nil, nil) when nothing matches.
type Directory interface {
	FindByUsernameOrNombre(ctx context.Context, name string) (*DirectoryEntry, error)
}

// Input is the raw team/supervisor data of a registration or user edit.
type Input struct {
	Team             string
	Supervisor       string
	SupervisorNombre string
	SupervisorID     *uuid.UUID
}

// Resolution is the canonical team and supervisor link of a user.
type Resolution struct {
	Team               string     `json:"team"`
	SupervisorUsername string     `json:"supervisor"`
	SupervisorNombre   string     `json:"supervisorName"`
	SupervisorRef      *uuid.UUID `json:"supervisorId"`
}

// Resolve maps raw input to a Resolution. It never fails: unknown aliases
// fall back to the raw input and an unmatched supervisor leaves SupervisorRef nil.
//
// A team derived from a supervisor alias overrides an explicitly supplied team.
func Resolve(ctx context.Context, in Input, dir Directory) Resolution {
	supervisor := strings.TrimSpace(in.Supervisor)
	supervisorNombre := strings.TrimSpace(in.SupervisorNombre)

	team := TeamFromCode(in.Team)
	fromAlias := false
	for _, alias := range []string{supervisor, supervisorNombre} {
		if alias == "" {
			continue
		}
		if t, ok := TeamFromSupervisor(alias); ok {
			team, fromAlias = t, true
			break
		}
	}

	res := Resolution{Team: team, SupervisorRef: in.SupervisorID}
	switch {
	case fromAlias:
		acc, _ := SupervisorOf(team)
		res.SupervisorUsername, res.SupervisorNombre = acc.Username, acc.Nombre
	case supervisor != "" || supervisorNombre != "":
		res.SupervisorUsername, res.SupervisorNombre = supervisor, supervisorNombre
	default:
		if acc, ok := SupervisorOf(team); ok {
			res.SupervisorUsername, res.SupervisorNombre = acc.Username, acc.Nombre
		}
	}

	if res.SupervisorRef == nil && dir != nil {
		res.link(ctx, dir)
	}
	if res.SupervisorNombre == "" {
		res.SupervisorNombre = res.SupervisorUsername
	}
	return res
}

// link attaches the directory account of the supervisor, if one matches.
func (r *Resolution) link(ctx context.Context, dir Directory) {
	for _, q := range []string{r.SupervisorUsername, r.SupervisorNombre} {
		if q == "" {
			continue
		}
		entry, err := dir.FindByUsernameOrNombre(ctx, q)
		if err != nil {
			log.Warn().Err(err).Str("supervisor", q).Msg("identity: supervisor lookup failed")
			continue
		}
		if entry == nil {
			continue
		}
		id := entry.ID
		r.SupervisorRef = &id
		if r.SupervisorUsername == "" {
			r.SupervisorUsername = entry.Username
		}
		if r.SupervisorNombre == "" {
			r.SupervisorNombre = entry.Nombre
		}
		if r.Team == "" {
			r.Team = entry.Team
		}
		return
	}
}
