package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Nombre
	}
	return out
}

func TestCompute_MonthScenario(t *testing.T) {
	entries := []Entry{
		{AgenteNombre: "B", Status: "completed", Puntaje: 10},
		{AgenteNombre: "A", Status: "COMPLETED", Puntaje: 10},
		{AgenteNombre: "A", Status: "CANCELLED", Puntaje: 99},
	}

	rows := Compute(entries, ViewActivacion, ScopeAgent, "")

	require.Len(t, rows, 2)
	assert.Equal(t, Row{Pos: 1, Nombre: "A", Ventas: 1, Puntos: 10, VentasFmt: "1", PuntosFmt: "10"}, rows[0])
	assert.Equal(t, Row{Pos: 2, Nombre: "B", Ventas: 1, Puntos: 10, VentasFmt: "1", PuntosFmt: "10"}, rows[1])
}

func TestCompute_CancelledExcludedFromEveryView(t *testing.T) {
	entries := []Entry{
		{AgenteNombre: "Ana", Status: "Cancelado", Producto: "LINEAS", Puntaje: 5},
		{AgenteNombre: "Ana", Status: "cancel", Producto: "LINEAS", Puntaje: 5},
		{AgenteNombre: "Ana", Status: "COMPLETED - CANCELLED BY CLIENT", Producto: "LINEAS", Puntaje: 5},
		{AgenteNombre: "Beto", Status: "pending", Producto: "LINEAS", Puntaje: 1},
	}

	for _, view := range []View{ViewActivacion, ViewVentas, ViewProducto} {
		for _, r := range Compute(entries, view, ScopeAgent, "LINEAS") {
			assert.NotEqual(t, "Ana", r.Nombre, view)
		}
	}
}

func TestCompute_ActivationOrder(t *testing.T) {
	entries := []Entry{
		{AgenteNombre: "Carla", Status: "completed", Puntaje: 3},
		{AgenteNombre: "Carla", Status: "completed", Puntaje: 3},
		{AgenteNombre: "Beto", Status: "completed", Puntaje: 6},
		{AgenteNombre: "Ana", Status: "completed", Puntaje: 8},
		{AgenteNombre: "Dario", Status: "pending", Puntaje: 50},
	}

	rows := Compute(entries, ViewActivacion, ScopeAgent, "")

	// Ana 8 pts; Carla and Beto tie on 6 pts, Carla has more sales; Dario is not completed.
	assert.Equal(t, []string{"Ana", "Carla", "Beto"}, names(rows))
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Pos, rows[1].Pos, rows[2].Pos})
}

func TestCompute_SalesOrder(t *testing.T) {
	entries := []Entry{
		{AgenteNombre: "Zoe", Status: "pending", Puntaje: 1},
		{AgenteNombre: "Zoe", Status: "completed", Puntaje: 1},
		{AgenteNombre: "Ana", Status: "pending", Puntaje: 9},
		{AgenteNombre: "Ángel", Status: "pending", Puntaje: 1},
		{AgenteNombre: "Beto", Status: "pending", Puntaje: 1},
	}

	rows := Compute(entries, ViewVentas, ScopeAgent, "")

	// Zoe has 2 sales; Ana wins the 1-sale tie on points; Ángel sorts before Beto.
	assert.Equal(t, []string{"Zoe", "Ana", "Ángel", "Beto"}, names(rows))
}

func TestCompute_GroupsByCanonicalName(t *testing.T) {
	entries := []Entry{
		{AgenteNombre: "María", Status: "pending", Puntaje: 1.25},
		{AgenteNombre: "MARIA ", Status: "pending", Puntaje: 1.25},
		{AgenteNombre: "", Status: "pending"},
	}

	rows := Compute(entries, ViewVentas, ScopeAgent, "")

	require.Len(t, rows, 2)
	assert.Equal(t, "María", rows[0].Nombre)
	assert.Equal(t, 2, rows[0].Ventas)
	assert.Equal(t, "2.5", rows[0].PuntosFmt)
	assert.Equal(t, "Sin asignar", rows[1].Nombre)
}

func TestCompute_TeamScopeAndProductFilter(t *testing.T) {
	entries := []Entry{
		{AgenteNombre: "Ana", Team: "TEAM IRANIA", Status: "completed", Producto: "Lineas Postpago", Puntaje: 2},
		{AgenteNombre: "Beto", Team: "TEAM IRANIA", Status: "completed", TipoServicio: "LÍNEAS", Puntaje: 2},
		{AgenteNombre: "Carla", Team: "TEAM LINEAS", Status: "completed", Producto: "INTERNET", Puntaje: 3},
	}

	teams := Compute(entries, ViewActivacion, ScopeTeam, "")
	require.Len(t, teams, 2)
	assert.Equal(t, "TEAM IRANIA", teams[0].Nombre)
	assert.Equal(t, 4.0, teams[0].Puntos)

	prod := Compute(entries, ViewProducto, ScopeAgent, "lineas")
	assert.Equal(t, []string{"Ana", "Beto"}, names(prod))
}

func TestComputeTabs_ScopeOnlyAffectsActivation(t *testing.T) {
	entries := []Entry{{AgenteNombre: "Ana", Team: "TEAM IRANIA", Status: "completed", Producto: "LINEAS", Puntaje: 1}}

	tabs := ComputeTabs(entries, ScopeTeam, "LINEAS")

	assert.Equal(t, "TEAM IRANIA", tabs.Activacion[0].Nombre)
	assert.Equal(t, "Ana", tabs.Ventas[0].Nombre)
	assert.Equal(t, "Ana", tabs.Producto[0].Nombre)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeAgent, s)

	s, err = ParseScope("Team")
	require.NoError(t, err)
	assert.Equal(t, ScopeTeam, s)

	_, err = ParseScope("supervisor")
	assert.Error(t, err)
}

func TestFormatPuntos(t *testing.T) {
	assert.Equal(t, "12.5", FormatPuntos(12.50))
	assert.Equal(t, "12", FormatPuntos(12.00))
	assert.Equal(t, "12.35", FormatPuntos(12.345))
	assert.Equal(t, "0", FormatPuntos(0))
}

func TestFormatVentas(t *testing.T) {
	assert.Equal(t, "7", FormatVentas(7))
	assert.Equal(t, "999", FormatVentas(999))

	grouped := FormatVentas(1234567)
	assert.Len(t, grouped, 9)
	assert.Equal(t, "1", grouped[:1])
	assert.Equal(t, "567", grouped[6:])
}
