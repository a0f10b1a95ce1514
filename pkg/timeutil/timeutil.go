package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Layouts acceptés pour les horodatages en entrée, dans l'ordre d'essai.
var layouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// ParseLocation retourne le fuseau nommé, UTC si le nom est vide.
func ParseLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("fuseau inconnu %q: %w", name, err)
	}
	return loc, nil
}

// Parse lit un horodatage. Sans décalage explicite, il est interprété dans loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("horodatage vide")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("format d'horodatage non reconnu: %q", s)
}

// EndOfDay retourne le même jour local à 23:59:59.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// DaysBetween retourne le nombre de jours calendaires entiers écoulés entre a et b,
// toujours positif ou nul. Les jours sont comptés dans le fuseau du plus ancien des deux.
func DaysBetween(a, b time.Time) int {
	if a.After(b) {
		a, b = b, a
	}
	b = b.In(a.Location())

	days := int(b.Sub(a).Hours() / 24)
	// corrige l'estimation autour des changements d'heure
	for !a.AddDate(0, 0, days+1).After(b) {
		days++
	}
	for days > 0 && a.AddDate(0, 0, days).After(b) {
		days--
	}
	return days
}
