package identity

import "strings"

// SupervisorAccount is the canonical login of a team's supervisor.
type SupervisorAccount struct {
	Username string
	Nombre   string
}

// teamCodes maps the short team keys sent by the registration form to the
// team display name stored on users and leads.
var teamCodes = map[string]string{
	"team_irania":  "TEAM IRANIA",
	"team_lineas":  "TEAM LINEAS",
	"team_roberto": "TEAM ROBERTO",
	"team_marisol": "TEAM MARISOL",
	"team_randal":  "TEAM RANDAL",
	"team_pleitez": "TEAM PLEITEZ",
}

// supervisorAliases maps canonicalized supervisor aliases, usernames and
// display names to the team they lead. Keys must already be in Canon form.
var supervisorAliases = map[string]string{
	"IRANIA":         "TEAM IRANIA",
	"IRANIA S":       "TEAM IRANIA",
	"IRANIA SERRANO": "TEAM IRANIA",
	"IRANIA.SERRANO": "TEAM IRANIA",

	"JONATHAN":          "TEAM LINEAS",
	"JONATHAN F":        "TEAM LINEAS",
	"JONATHAN FIGUEROA": "TEAM LINEAS",
	"JONATHAN.FIGUEROA": "TEAM LINEAS",
	"LUIS":              "TEAM LINEAS",
	"LUIS G":            "TEAM LINEAS",
	"LUIS GUTIERREZ":    "TEAM LINEAS",
	"LUIS.GUTIERREZ":    "TEAM LINEAS",

	"ROBERTO":           "TEAM ROBERTO",
	"ROBERTO V":         "TEAM ROBERTO",
	"ROBERTO VELASQUEZ": "TEAM ROBERTO",
	"ROBERTO.VELASQUEZ": "TEAM ROBERTO",

	"MARISOL":         "TEAM MARISOL",
	"MARISOL B":       "TEAM MARISOL",
	"MARISOL BELTRAN": "TEAM MARISOL",
	"MARISOL.BELTRAN": "TEAM MARISOL",

	"RANDAL":          "TEAM RANDAL",
	"RANDAL M":        "TEAM RANDAL",
	"RANDAL MARTINEZ": "TEAM RANDAL",
	"RANDAL.MARTINEZ": "TEAM RANDAL",

	"BRYAN":         "TEAM PLEITEZ",
	"BRYAN P":       "TEAM PLEITEZ",
	"PLEITEZ":       "TEAM PLEITEZ",
	"BRYAN PLEITEZ": "TEAM PLEITEZ",
	"BRYAN.PLEITEZ": "TEAM PLEITEZ",
}

var teamSupervisors = map[string]SupervisorAccount{
	"TEAM IRANIA":  {Username: "irania.serrano", Nombre: "IRANIA SERRANO"},
	"TEAM LINEAS":  {Username: "jonathan.figueroa", Nombre: "JONATHAN FIGUEROA"},
	"TEAM ROBERTO": {Username: "roberto.velasquez", Nombre: "ROBERTO VELASQUEZ"},
	"TEAM MARISOL": {Username: "marisol.beltran", Nombre: "MARISOL BELTRAN"},
	"TEAM RANDAL":  {Username: "randal.martinez", Nombre: "RANDAL MARTINEZ"},
	"TEAM PLEITEZ": {Username: "bryan.pleitez", Nombre: "BRYAN PLEITEZ"},
}

// TeamFromCode returns the display name for a team code. Unknown codes fall
// back to the known display name with the same canonical form, then to the
// trimmed input.
func TeamFromCode(code string) string {
	raw := strings.TrimSpace(code)
	if raw == "" {
		return ""
	}
	if t, ok := teamCodes[strings.ToLower(raw)]; ok {
		return t
	}
	c := Canon(raw)
	if _, ok := teamSupervisors[c]; ok {
		return c
	}
	return raw
}

// TeamFromSupervisor returns the team led by the supervisor alias, if known.
func TeamFromSupervisor(alias string) (string, bool) {
	t, ok := supervisorAliases[Canon(alias)]
	return t, ok
}

// SupervisorOf returns the canonical supervisor account of a team.
func SupervisorOf(team string) (SupervisorAccount, bool) {
	s, ok := teamSupervisors[Canon(team)]
	return s, ok
}

// Teams lists the known team display names.
func Teams() []string {
	out := make([]string, 0, len(teamSupervisors))
	for t := range teamSupervisors {
		out = append(out, t)
	}
	return out
}
