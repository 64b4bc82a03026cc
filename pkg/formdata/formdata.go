// Package formdata is the single canonicalization point for submitted form
// field names. Every intake path and the identity resolver go through
// NormalizeKey so "Full Name", "full  name" and "full_name" address the same
// logical field regardless of call site.
package formdata

import (
	"sort"
	"strings"
)

// Canonical keys for the logical fields the identity resolver recognizes.
const (
	KeyEmail       = "email"
	KeyPhone       = "phone"
	KeyPhoneNumber = "phone_number"
	KeyFullName    = "full_name"
	KeyIDNumber    = "id_number"
)

// NormalizeKey lower-cases a field label and collapses each whitespace run
// into a single underscore. Leading and trailing whitespace is dropped.
func NormalizeKey(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	return strings.Join(fields, "_")
}

// FormData carries a submission with both the verbatim keys (for display) and
// the canonical keys (for downstream consumers). Values are never altered.
type FormData struct {
	Original   map[string]string `json:"original"`
	Normalized map[string]string `json:"normalized"`
}

// Normalize builds FormData from a raw submission. When two raw keys collapse
// to the same canonical key the first value in ascending raw-key order wins,
// keeping the result deterministic.
func Normalize(raw map[string]string) FormData {
	fd := FormData{
		Original:   make(map[string]string, len(raw)),
		Normalized: make(map[string]string, len(raw)),
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fd.Original[k] = raw[k]
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if _, taken := fd.Normalized[nk]; !taken {
			fd.Normalized[nk] = raw[k]
		}
	}
	return fd
}

// Phone returns the submitted phone value, accepting either source key.
func (fd FormData) Phone() string {
	if v := fd.Normalized[KeyPhone]; v != "" {
		return v
	}
	return fd.Normalized[KeyPhoneNumber]
}

// Email returns the submitted email value under its canonical key.
func (fd FormData) Email() string { return fd.Normalized[KeyEmail] }

// FullName returns the submitted full name under its canonical key.
func (fd FormData) FullName() string { return fd.Normalized[KeyFullName] }

// IDNumber returns the submitted id number under its canonical key.
func (fd FormData) IDNumber() string { return fd.Normalized[KeyIDNumber] }

// IsEmpty reports whether the submission carried no fields at all.
func (fd FormData) IsEmpty() bool { return len(fd.Original) == 0 }
