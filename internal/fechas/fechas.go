// Package fechas parses the date formats accepted by the API and produces the
// storage keys used by leads, the billing ledger and the daily counters.
package fechas

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key is a calendar day decomposed for unique indexes.
type Key struct {
	Anio int `json:"anio"`
	Mes  int `json:"mes"`
	Dia  int `json:"dia"`
}

// Display renders the key as DD/MM/YYYY.
func (k Key) Display() string {
	return fmt.Sprintf("%02d/%02d/%04d", k.Dia, k.Mes, k.Anio)
}

// Time returns midnight UTC of the day.
func (k Key) Time() time.Time {
	return time.Date(k.Anio, time.Month(k.Mes), k.Dia, 0, 0, 0, 0, time.UTC)
}

// FromTime builds the key of t's calendar day.
func FromTime(t time.Time) Key {
	return Key{Anio: t.Year(), Mes: int(t.Month()), Dia: t.Day()}
}

// Parse accepts YYYY-M-D / YYYY-MM-DD (optionally followed by a time part) and
// D/M/YYYY / DD/MM/YYYY. The day must exist in the calendar.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	var parts []string
	var k Key
	switch {
	case strings.Count(s, "-") == 2:
		parts = strings.Split(s, "-")
		if len(parts[0]) != 4 {
			return Key{}, fmt.Errorf("fecha invalida: %q", s)
		}
		k.Anio, k.Mes, k.Dia = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	case strings.Count(s, "/") == 2:
		parts = strings.Split(s, "/")
		if len(parts[2]) != 4 {
			return Key{}, fmt.Errorf("fecha invalida: %q", s)
		}
		k.Dia, k.Mes, k.Anio = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	default:
		return Key{}, fmt.Errorf("fecha invalida: %q", s)
	}
	if k.Anio <= 0 || k.Mes < 1 || k.Mes > 12 || k.Dia < 1 {
		return Key{}, fmt.Errorf("fecha invalida: %q", s)
	}
	if FromTime(k.Time()) != k {
		return Key{}, fmt.Errorf("fecha inexistente: %q", s)
	}
	return k, nil
}

// Normalize returns s in DD/MM/YYYY form.
func Normalize(s string) (string, error) {
	k, err := Parse(s)
	if err != nil {
		return "", err
	}
	return k.Display(), nil
}

// Month is a YYYY-MM period.
type Month struct {
	Anio int
	Mes  int
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("mes invalido: %q (formato YYYY-MM)", s)
	}
	return Month{Anio: t.Year(), Mes: int(t.Month())}, nil
}

// Range returns the half-open [start, end) interval of the month.
func (m Month) Range() (time.Time, time.Time) {
	start := time.Date(m.Anio, time.Month(m.Mes), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Anio, m.Mes) }

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}
