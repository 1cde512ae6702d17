package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	entries []DirectoryEntry
	err     error
	calls   int
}

func (d *stubDirectory) FindByUsernameOrNombre(_ context.Context, name string) (*DirectoryEntry, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	for i := range d.entries {
		e := d.entries[i]
		if Canon(e.Username) == Canon(name) || Canon(e.Nombre) == Canon(name) {
			return &e, nil
		}
	}
	return nil, nil
}

func TestCanon(t *testing.T) {
	assert.Equal(t, "ROBERTO", Canon("Roberto"))
	assert.Equal(t, "ROBERTO", Canon("ROBERTO"))
	assert.Equal(t, "ROBERTO", Canon("  Róbérto "))
	assert.Equal(t, "JONATHAN F", Canon("jónathan   f"))
	assert.Equal(t, "", Canon("   "))
	assert.True(t, Equal("Marisol Beltrán", "MARISOL BELTRAN"))
}

func TestParseRol(t *testing.T) {
	cases := map[string]Rol{
		"Administrador": RolAdmin,
		"admin":         RolAdmin,
		"Agente":        RolAgente,
		"agent":         RolAgente,
		"Supervisor":    RolSupervisor,
		"Backoffice":    RolBackoffice,
		"Back Office":   RolBackoffice,
		"ADMINÍSTRADOR": RolAdmin,
	}
	for in, want := range cases {
		got, err := ParseRol(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRol("gerente")
	assert.Error(t, err)
}

func TestTeamFromSupervisor_AliasesIgnoreCaseAndAccents(t *testing.T) {
	for alias := range supervisorAliases {
		team, ok := TeamFromSupervisor(alias)
		require.True(t, ok, alias)
		_, known := teamSupervisors[team]
		assert.True(t, known, "alias %q points to a team without supervisor", alias)
	}
	for _, alias := range []string{"jonathan f", "JONATHAN F", "Jónathan F", "luis g", "Luís"} {
		team, ok := TeamFromSupervisor(alias)
		require.True(t, ok, alias)
		assert.Equal(t, "TEAM LINEAS", team, alias)
	}
}

func TestTeamFromCode(t *testing.T) {
	assert.Equal(t, "TEAM IRANIA", TeamFromCode("team_irania"))
	assert.Equal(t, "TEAM IRANIA", TeamFromCode(" Team Irania "))
	assert.Equal(t, "Equipo Nuevo", TeamFromCode("Equipo Nuevo"))
	assert.Equal(t, "", TeamFromCode(""))
}

func TestResolve_SupervisorAliasSetsTeamAndCanonicalSupervisor(t *testing.T) {
	res := Resolve(context.Background(), Input{Supervisor: "IRANIA"}, nil)

	assert.Equal(t, "TEAM IRANIA", res.Team)
	assert.Equal(t, "irania.serrano", res.SupervisorUsername)
	assert.Equal(t, "IRANIA SERRANO", res.SupervisorNombre)
	assert.Nil(t, res.SupervisorRef)
}

func TestResolve_SupervisorAliasOverridesExplicitTeam(t *testing.T) {
	res := Resolve(context.Background(), Input{Team: "team_irania", SupervisorNombre: "Luis G"}, nil)

	assert.Equal(t, "TEAM LINEAS", res.Team)
	assert.Equal(t, "jonathan.figueroa", res.SupervisorUsername)
}

func TestResolve_TeamCodeOnlyUsesTeamSupervisor(t *testing.T) {
	res := Resolve(context.Background(), Input{Team: "team_marisol"}, nil)

	assert.Equal(t, "TEAM MARISOL", res.Team)
	assert.Equal(t, "marisol.beltran", res.SupervisorUsername)
}

func TestResolve_CallerSupervisorWinsWhenNoAlias(t *testing.T) {
	res := Resolve(context.Background(), Input{Team: "team_roberto", Supervisor: "carla.mendez", SupervisorNombre: "Carla Méndez"}, nil)

	assert.Equal(t, "TEAM ROBERTO", res.Team)
	assert.Equal(t, "carla.mendez", res.SupervisorUsername)
	assert.Equal(t, "Carla Méndez", res.SupervisorNombre)
}

func TestResolve_LinksDirectoryAccount(t *testing.T) {
	id := uuid.New()
	dir := &stubDirectory{entries: []DirectoryEntry{{ID: id, Username: "irania.serrano", Nombre: "Irania Serrano", Team: "TEAM IRANIA"}}}

	res := Resolve(context.Background(), Input{Supervisor: "irania"}, dir)

	require.NotNil(t, res.SupervisorRef)
	assert.Equal(t, id, *res.SupervisorRef)
}

func TestResolve_UnknownSupervisorTakesTeamFromDirectory(t *testing.T) {
	id := uuid.New()
	dir := &stubDirectory{entries: []DirectoryEntry{{ID: id, Username: "carla.mendez", Nombre: "Carla Mendez", Team: "TEAM ROBERTO"}}}

	res := Resolve(context.Background(), Input{SupervisorNombre: "CARLA MÉNDEZ"}, dir)

	require.NotNil(t, res.SupervisorRef)
	assert.Equal(t, "TEAM ROBERTO", res.Team)
	assert.Equal(t, "carla.mendez", res.SupervisorUsername)
}

func TestResolve_UnmatchedOrFailingDirectoryLeavesRefNil(t *testing.T) {
	res := Resolve(context.Background(), Input{Supervisor: "nadie"}, &stubDirectory{})
	assert.Nil(t, res.SupervisorRef)
	assert.Equal(t, "nadie", res.SupervisorUsername)

	failing := &stubDirectory{err: errors.New("db down")}
	res = Resolve(context.Background(), Input{Supervisor: "IRANIA"}, failing)
	assert.Nil(t, res.SupervisorRef)
	assert.Equal(t, "TEAM IRANIA", res.Team)
	assert.Equal(t, 2, failing.calls)
}

func TestResolve_ExplicitRefSkipsDirectory(t *testing.T) {
	id := uuid.New()
	dir := &stubDirectory{}

	res := Resolve(context.Background(), Input{Supervisor: "IRANIA", SupervisorID: &id}, dir)

	assert.Equal(t, &id, res.SupervisorRef)
	assert.Zero(t, dir.calls)
}
