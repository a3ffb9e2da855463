// Package encoder maps categorical application fields to the integer codes the model was trained on.
package encoder

import (
	"fmt"
	"sort"
)

// Categorical fields known to the registry
const (
	FieldJobType        = "job_type"
	FieldMaritalStatus  = "marital_status"
	FieldEducationLevel = "education_level"
)

// Fields lists the categorical fields in feature-vector order
var Fields = []string{FieldJobType, FieldMaritalStatus, FieldEducationLevel}

// Entry is one label/code pair of a field mapping
type Entry struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

// UnknownLabelError is returned when a label is not part of a field mapping
type UnknownLabelError struct {
	Field string
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown %s label %q", e.Field, e.Label)
}

type mapping struct {
	labels []string // indexed by code
	codes  map[string]int
}

// Registry holds the immutable label mappings of every categorical field
type Registry struct {
	fields map[string]mapping
}

// NewRegistry validates the entries and builds a registry.
// Every field in Fields must be present and its codes must cover 0..k-1 exactly once.
func NewRegistry(entries map[string][]Entry) (*Registry, error) {
	r := &Registry{fields: make(map[string]mapping, len(Fields))}
	for _, field := range Fields {
		list, ok := entries[field]
		if !ok {
			return nil, fmt.Errorf("encoder for %s is missing", field)
		}
		m, err := newMapping(field, list)
		if err != nil {
			return nil, err
		}
		r.fields[field] = m
	}
	for field := range entries {
		if _, ok := r.fields[field]; !ok {
			return nil, fmt.Errorf("unexpected encoder field %s", field)
		}
	}
	return r, nil
}

func newMapping(field string, list []Entry) (mapping, error) {
	if len(list) == 0 {
		return mapping{}, fmt.Errorf("encoder for %s has no labels", field)
	}

	sorted := make([]Entry, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	m := mapping{
		labels: make([]string, len(sorted)),
		codes:  make(map[string]int, len(sorted)),
	}
	for i, e := range sorted {
		if e.Code != i {
			return mapping{}, fmt.Errorf("encoder for %s: codes must be 0..%d without gaps, got %d", field, len(sorted)-1, e.Code)
		}
		if e.Label == "" {
			return mapping{}, fmt.Errorf("encoder for %s: empty label for code %d", field, e.Code)
		}
		if _, dup := m.codes[e.Label]; dup {
			return mapping{}, fmt.Errorf("encoder for %s: duplicate label %q", field, e.Label)
		}
		m.labels[i] = e.Label
		m.codes[e.Label] = e.Code
	}
	return m, nil
}

// Labels returns the labels of a field ordered by code
func (r *Registry) Labels(field string) ([]string, error) {
	m, ok := r.fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown categorical field %s", field)
	}
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out, nil
}

// Encode returns the trained code of a label
func (r *Registry) Encode(field, label string) (int, error) {
	m, ok := r.fields[field]
	if !ok {
		return 0, fmt.Errorf("unknown categorical field %s", field)
	}
	code, ok := m.codes[label]
	if !ok {
		return 0, &UnknownLabelError{Field: field, Label: label}
	}
	return code, nil
}

// Decode returns the label assigned to a code
func (r *Registry) Decode(field string, code int) (string, error) {
	m, ok := r.fields[field]
	if !ok {
		return "", fmt.Errorf("unknown categorical field %s", field)
	}
	if code < 0 || code >= len(m.labels) {
		return "", fmt.Errorf("code %d out of range for %s", code, field)
	}
	return m.labels[code], nil
}

// Options returns the labels of every field, keyed by field name
func (r *Registry) Options() map[string][]string {
	out := make(map[string][]string, len(Fields))
	for _, field := range Fields {
		out[field], _ = r.Labels(field)
	}
	return out
}
