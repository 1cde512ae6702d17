// Package ranking builds the monthly leaderboards from lead entries.
// Everything here is pure: callers load the month's leads and pass them in.
package ranking

import (
	"fmt"
	"slices"
	"strings"

	"crmventas/internal/compat"
	"crmventas/internal/identity"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// View names one leaderboard.
type View string

const (
	// ViewActivacion ranks completed leads by points.
	ViewActivacion View = "activacion"
	// ViewVentas ranks every non-cancelled lead by count.
	ViewVentas View = "ventas"
	// ViewProducto ranks the leads of one product by count.
	ViewProducto View = "producto"
)

// Scope selects the grouping key.
type Scope string

const (
	ScopeAgent Scope = "agent"
	ScopeTeam  Scope = "team"
)

// ParseScope accepts agent/agente/team/equipo; empty means agent.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "agent", "agente":
		return ScopeAgent, nil
	case "team", "equipo":
		return ScopeTeam, nil
	}
	return "", fmt.Errorf("agrupacion invalida: %q (agent|team)", s)
}

// Entry is the part of a lead the rankings read.
type Entry struct {
	AgenteNombre string
	Team         string
	Status       string
	Producto     string
	TipoServicio string
	Puntaje      float64
}

// Row is one leaderboard position.
type Row struct {
	Pos       int     `json:"pos"`
	Nombre    string  `json:"nombre"`
	Ventas    int     `json:"ventas"`
	Puntos    float64 `json:"puntos"`
	VentasFmt string  `json:"ventas_fmt"`
	PuntosFmt string  `json:"puntos_fmt"`
}

// IsCancelled reports whether a status excludes the lead from every ranking.
func IsCancelled(status string) bool {
	return strings.Contains(identity.Canon(status), "CANCEL")
}

// IsCompleted reports whether a status counts toward activation.
func IsCompleted(status string) bool {
	return strings.HasPrefix(identity.Canon(status), "COMPLET")
}

// MatchesProduct reports whether the entry belongs to the product filter.
// An empty filter matches everything.
func MatchesProduct(e Entry, product string) bool {
	p := identity.Canon(product)
	if p == "" {
		return true
	}
	return strings.Contains(identity.Canon(e.Producto), p) || strings.Contains(identity.Canon(e.TipoServicio), p)
}

// GroupName returns the display key of the entry for the scope.
func GroupName(e Entry, scope Scope) string {
	name := e.AgenteNombre
	if scope == ScopeTeam {
		name = e.Team
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return compat.SinAsignar
	}
	return name
}

type bucket struct {
	nombre string
	ventas int
	puntos decimal.Decimal
}

// Compute builds one view. Rows get consecutive 1-based positions; tied rows
// do not share a position.
func Compute(entries []Entry, view View, scope Scope, product string) []Row {
	byKey := make(map[string]*bucket)
	var order []*bucket
	for _, e := range entries {
		if IsCancelled(e.Status) {
			continue
		}
		switch view {
		case ViewActivacion:
			if !IsCompleted(e.Status) {
				continue
			}
		case ViewProducto:
			if !MatchesProduct(e, product) {
				continue
			}
		}
		name := GroupName(e, scope)
		key := identity.Canon(name)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{nombre: name}
			byKey[key] = b
			order = append(order, b)
		}
		b.ventas++
		b.puntos = b.puntos.Add(decimal.NewFromFloat(e.Puntaje))
	}

	coll := collate.New(language.Spanish)
	byName := func(a, b *bucket) int {
		if c := coll.CompareString(a.nombre, b.nombre); c != 0 {
			return c
		}
		return strings.Compare(a.nombre, b.nombre)
	}
	slices.SortStableFunc(order, func(a, b *bucket) int {
		if view == ViewActivacion {
			if c := b.puntos.Cmp(a.puntos); c != 0 {
				return c
			}
			if c := b.ventas - a.ventas; c != 0 {
				return c
			}
			return byName(a, b)
		}
		if c := b.ventas - a.ventas; c != 0 {
			return c
		}
		if c := b.puntos.Cmp(a.puntos); c != 0 {
			return c
		}
		return byName(a, b)
	})

	rows := make([]Row, len(order))
	for i, b := range order {
		puntos := b.puntos.Round(2)
		rows[i] = Row{
			Pos:       i + 1,
			Nombre:    b.nombre,
			Ventas:    b.ventas,
			Puntos:    puntos.InexactFloat64(),
			VentasFmt: FormatVentas(b.ventas),
			PuntosFmt: puntos.String(),
		}
	}
	return rows
}

// Tabs holds the three views of the ranking page.
type Tabs struct {
	Activacion []Row `json:"activacion"`
	Ventas     []Row `json:"ventas"`
	Producto   []Row `json:"producto"`
}

// ComputeTabs builds all views. Only activation honours scope; the sales and
// product views are always per agent.
func ComputeTabs(entries []Entry, activationScope Scope, product string) Tabs {
	return Tabs{
		Activacion: Compute(entries, ViewActivacion, activationScope, product),
		Ventas:     Compute(entries, ViewVentas, ScopeAgent, product),
		Producto:   Compute(entries, ViewProducto, ScopeAgent, product),
	}
}

// EmptyTabs is returned when the leads could not be loaded.
func EmptyTabs() Tabs {
	return Tabs{Activacion: []Row{}, Ventas: []Row{}, Producto: []Row{}}
}

// FormatVentas renders an integer with thousands grouping.
func FormatVentas(n int) string {
	return message.NewPrinter(language.LatinAmericanSpanish).Sprintf("%d", n)
}

// FormatPuntos rounds to two decimals and drops trailing zeros: 12.50 → "12.5", 12.00 → "12".
func FormatPuntos(f float64) string {
	return decimal.NewFromFloat(f).Round(2).String()
}
