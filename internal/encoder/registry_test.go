package encoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingEntries() map[string][]Entry {
	return map[string][]Entry{
		FieldJobType: {
			{Label: "Salaried", Code: 0},
			{Label: "Self-Employed", Code: 1},
			{Label: "Unemployed", Code: 2},
		},
		FieldMaritalStatus: {
			{Label: "Divorced", Code: 0},
			{Label: "Married", Code: 1},
			{Label: "Single", Code: 2},
			{Label: "Widowed", Code: 3},
		},
		FieldEducationLevel: {
			{Label: "Bachelor", Code: 0},
			{Label: "High School", Code: 1},
			{Label: "Master", Code: 2},
			{Label: "Other", Code: 3},
			{Label: "PhD", Code: 4},
		},
	}
}

func TestRegistry_RoundTrip(t *testing.T) {
	r, err := NewRegistry(trainingEntries())
	require.NoError(t, err)

	for _, field := range Fields {
		labels, err := r.Labels(field)
		require.NoError(t, err)
		for i, label := range labels {
			code, err := r.Encode(field, label)
			require.NoError(t, err)
			assert.Equal(t, i, code)

			back, err := r.Decode(field, code)
			require.NoError(t, err)
			assert.Equal(t, label, back)
		}
	}
}

func TestRegistry_EncodeUnknownLabel(t *testing.T) {
	r, err := NewRegistry(trainingEntries())
	require.NoError(t, err)

	_, err = r.Encode(FieldJobType, "Astronaut")
	var unknown *UnknownLabelError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, FieldJobType, unknown.Field)
	assert.Equal(t, "Astronaut", unknown.Label)
}

func TestRegistry_LabelsAreCopies(t *testing.T) {
	r, err := NewRegistry(trainingEntries())
	require.NoError(t, err)

	labels, err := r.Labels(FieldMaritalStatus)
	require.NoError(t, err)
	labels[0] = "Mutated"

	again, err := r.Labels(FieldMaritalStatus)
	require.NoError(t, err)
	assert.Equal(t, "Divorced", again[0])
}

func TestRegistry_UnorderedEntries(t *testing.T) {
	entries := trainingEntries()
	entries[FieldJobType] = []Entry{
		{Label: "Unemployed", Code: 2},
		{Label: "Salaried", Code: 0},
		{Label: "Self-Employed", Code: 1},
	}
	r, err := NewRegistry(entries)
	require.NoError(t, err)

	labels, _ := r.Labels(FieldJobType)
	assert.Equal(t, []string{"Salaried", "Self-Employed", "Unemployed"}, labels)
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string][]Entry)
	}{
		{"missing field", func(e map[string][]Entry) { delete(e, FieldEducationLevel) }},
		{"extra field", func(e map[string][]Entry) { e["region"] = []Entry{{Label: "North", Code: 0}} }},
		{"empty field", func(e map[string][]Entry) { e[FieldJobType] = nil }},
		{"gap in codes", func(e map[string][]Entry) { e[FieldJobType][2].Code = 5 }},
		{"duplicate code", func(e map[string][]Entry) { e[FieldJobType][2].Code = 1 }},
		{"duplicate label", func(e map[string][]Entry) { e[FieldJobType][2].Label = "Salaried" }},
		{"empty label", func(e map[string][]Entry) { e[FieldJobType][0].Label = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := trainingEntries()
			tt.mutate(entries)
			_, err := NewRegistry(entries)
			assert.Error(t, err)
		})
	}
}

func TestRegistry_UnknownField(t *testing.T) {
	r, err := NewRegistry(trainingEntries())
	require.NoError(t, err)

	_, err = r.Labels("region")
	assert.Error(t, err)
	_, err = r.Encode("region", "North")
	assert.Error(t, err)
	_, err = r.Decode(FieldJobType, 3)
	assert.Error(t, err)
}

func TestRegistry_Options(t *testing.T) {
	r, err := NewRegistry(trainingEntries())
	require.NoError(t, err)

	opts := r.Options()
	assert.Len(t, opts, 3)
	assert.Equal(t, []string{"Bachelor", "High School", "Master", "Other", "PhD"}, opts[FieldEducationLevel])
}
