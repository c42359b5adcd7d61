// Package envlines turns items into env lines and combines the lines of
// several items.
package envlines

import (
	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/dotenv"
)

// WarnFunc receives labels skipped for not being valid env names.
type WarnFunc func(label string)

// FromItem builds one reference line per usable field, in field order.
// Fields without a label or value are skipped silently; labels that are
// not env names are reported through warn and skipped.
func FromItem(detail *backend.ItemDetail, vaultID, itemID, scheme string, warn WarnFunc) []dotenv.Line {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return collect(detail, warn, func(label string, _ *backend.FieldValue) string {
		return Reference{Scheme: scheme, Vault: vaultID, Item: itemID, Field: label}.String()
	})
}

// FromItemValues builds lines carrying the field values themselves,
// quoted for a dotenv file.
func FromItemValues(detail *backend.ItemDetail, warn WarnFunc) []dotenv.Line {
	return collect(detail, warn, func(_ string, v *backend.FieldValue) string {
		return dotenv.Quote(v.Text())
	})
}

func collect(detail *backend.ItemDetail, warn WarnFunc, value func(string, *backend.FieldValue) string) []dotenv.Line {
	if detail == nil {
		return nil
	}
	var set lineSet
	for _, f := range detail.Fields {
		if f.Label == nil {
			continue
		}
		label := *f.Label
		if !dotenv.IsValidKey(label) {
			if warn != nil {
				warn(label)
			}
			continue
		}
		if f.Value == nil {
			continue
		}
		set.put(dotenv.Line{Key: label, Value: value(label, f.Value)})
	}
	return set.lines
}

// Section is the line set contributed by one item.
type Section struct {
	Title string
	Lines []dotenv.Line
}

// OverrideFunc is told when a later section replaces an earlier value.
type OverrideFunc func(key, from, to string)

// Merge unions sections in order. A key keeps the position of its first
// appearance and the value of its last.
func Merge(sections []Section, onOverride OverrideFunc) []dotenv.Line {
	var set lineSet
	owner := make(map[string]string)
	for _, s := range sections {
		for _, l := range s.Lines {
			if prev, ok := owner[l.Key]; ok && onOverride != nil && prev != s.Title {
				onOverride(l.Key, prev, s.Title)
			}
			owner[l.Key] = s.Title
			set.put(l)
		}
	}
	return set.lines
}

// lineSet keeps keys unique and in first-insertion order.
type lineSet struct {
	lines []dotenv.Line
	index map[string]int
}

func (s *lineSet) put(l dotenv.Line) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[l.Key]; ok {
		s.lines[i].Value = l.Value
		return
	}
	s.index[l.Key] = len(s.lines)
	s.lines = append(s.lines, l)
}
