// Package sic resolves UK Standard Industrial Classification codes to
// sector labels via a reference table loaded once per process.
package sic

import (
	"sort"
	"strings"
)

// Table maps 5-character zero-padded SIC codes to sector labels. It is
// loaded once and shared read-only across partner runs.
type Table map[string]string

// Normalize canonicalizes one free-text SIC fragment: a missing "/"
// separator implies subclass 0, "." and "/" are stripped, and the result is
// left-padded with zeros to 5 characters. "70.22" and "70220" normalize to
// the same code.
func Normalize(fragment string) string {
	s := strings.TrimSpace(fragment)
	hasSubclass := strings.Contains(s, "/")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "/", "")
	// A bare class code gets subclass 0; a code already carrying five
	// digits is complete as given.
	if !hasSubclass && len(s) < 5 {
		s += "0"
	}
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

// Resolve maps a free-text, comma-delimited industry-classification string to
// the set of sector labels it matches. Fragments with no reference-table
// match contribute nothing. The result is sorted and de-duplicated so runs
// are deterministic; a nil or blank input yields an empty set.
func (t Table) Resolve(raw *string) []string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	for _, fragment := range strings.Split(*raw, ",") {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		if label, ok := t[Normalize(fragment)]; ok {
			seen[label] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
