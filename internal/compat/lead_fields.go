// Package compat maps the historical field names of lead payloads onto the
// canonical lead schema. The mapping runs once, when a lead is ingested;
// nothing downstream reads the legacy names.
package compat

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SinAsignar is the agent name of leads that carry no agent identity at all.
const SinAsignar = "Sin asignar"

// fieldAliases lists, per canonical field, the payload keys that have carried
// it over time. Earlier keys win.
var fieldAliases = map[string][]string{
	"nombre_cliente":     {"nombre_cliente", "nombreCliente", "cliente", "nombre", "customerName"},
	"telefono_principal": {"telefono_principal", "telefonoPrincipal", "telefono", "phone"},
	"telefono_alterno":   {"telefono_alterno", "telefonoAlterno", "telefono2", "phone2"},
	"numero_cuenta":      {"numero_cuenta", "numeroCuenta", "cuenta", "accountNumber"},
	"direccion":          {"direccion", "address"},
	"tipo_servicio":      {"tipo_servicio", "tipoServicio", "servicio", "serviceType"},
	"producto":           {"producto", "product", "carrier", "compania"},
	"dia_venta":          {"dia_venta", "diaVenta", "fecha_venta", "fechaVenta", "fecha"},
	"dia_instalacion":    {"dia_instalacion", "diaInstalacion", "fecha_instalacion", "fechaInstalacion"},
	"status":             {"status", "estado"},
	"agente":             {"agenteUsername", "agente_username", "agente", "usuario", "username"},
	"agente_nombre":      {"agenteNombre", "nombreAgente", "agente", "agentName", "agent", "usuario"},
	"supervisor":         {"supervisor", "supervisorName"},
	"team":               {"team", "equipo"},
	"comentario":         {"comentario", "comentarios", "notas", "notes"},
}

// nestedAgentKeys are checked, in order, inside object-valued agent fields
// such as {"agente": {"nombre": "..."}}.
var nestedAgentKeys = []string{"nombre", "name", "username"}

// nestedAgentFields are object fields that may hold the submitting agent.
var nestedAgentFields = []string{"agente", "agent", "createdBy", "creadoPor"}

// scoreFields are tried in order; the first one holding a finite number wins.
var scoreFields = []string{"puntaje", "puntos", "score", "points", "puntajeVenta", "puntaje_venta"}

// LeadFields is the canonical content of an ingested lead.
type LeadFields struct {
	NombreCliente     string
	TelefonoPrincipal string
	TelefonoAlterno   string
	NumeroCuenta      string
	Direccion         string
	TipoServicio      string
	Producto          string
	DiaVenta          string
	DiaInstalacion    string
	Status            string
	Agente            string
	AgenteNombre      string
	Supervisor        string
	Team              string
	Comentario        string
	Puntaje           float64
}

// FromPayload applies the alias table to a raw JSON object.
func FromPayload(raw map[string]any) LeadFields {
	f := LeadFields{
		NombreCliente:     firstString(raw, fieldAliases["nombre_cliente"]),
		TelefonoPrincipal: firstString(raw, fieldAliases["telefono_principal"]),
		TelefonoAlterno:   firstString(raw, fieldAliases["telefono_alterno"]),
		NumeroCuenta:      firstString(raw, fieldAliases["numero_cuenta"]),
		Direccion:         firstString(raw, fieldAliases["direccion"]),
		TipoServicio:      firstString(raw, fieldAliases["tipo_servicio"]),
		Producto:          firstString(raw, fieldAliases["producto"]),
		DiaVenta:          firstString(raw, fieldAliases["dia_venta"]),
		DiaInstalacion:    firstString(raw, fieldAliases["dia_instalacion"]),
		Status:            firstString(raw, fieldAliases["status"]),
		Agente:            firstString(raw, fieldAliases["agente"]),
		AgenteNombre:      firstString(raw, fieldAliases["agente_nombre"]),
		Supervisor:        firstString(raw, fieldAliases["supervisor"]),
		Team:              firstString(raw, fieldAliases["team"]),
		Comentario:        firstString(raw, fieldAliases["comentario"]),
		Puntaje:           Score(raw),
	}
	if f.AgenteNombre == "" {
		f.AgenteNombre = nestedAgent(raw)
	}
	return f
}

// Score returns the first finite number among the score fields, or 0.
func Score(raw map[string]any) float64 {
	for _, k := range scoreFields {
		if n, ok := toNumber(raw[k]); ok {
			return n
		}
	}
	return 0
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if s := toString(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func nestedAgent(raw map[string]any) string {
	for _, field := range nestedAgentFields {
		obj, ok := raw[field].(map[string]any)
		if !ok {
			continue
		}
		if s := firstString(obj, nestedAgentKeys); s != "" {
			return s
		}
	}
	return ""
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
