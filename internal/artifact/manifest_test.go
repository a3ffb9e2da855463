package artifact

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dan9191/loan-approval/internal/classifier"
	"github.com/Dan9191/loan-approval/internal/encoder"
	"github.com/Dan9191/loan-approval/internal/features"
	"github.com/Dan9191/loan-approval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedManifest = "../../artifacts/loan_model.json"

func readManifest(t *testing.T) (Manifest, []byte) {
	t.Helper()
	raw, err := os.ReadFile(shippedManifest)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	return m, raw
}

func encode(t *testing.T, m Manifest) []byte {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return raw
}

func TestLoadFile_Shipped(t *testing.T) {
	b, err := LoadFile(shippedManifest)
	require.NoError(t, err)

	assert.Equal(t, "loan-approval", b.Name)
	assert.Equal(t, "1.0.0", b.Version)
	assert.Equal(t, features.Names(), b.Features)
	assert.Len(t, b.Fingerprint, 64)
	assert.Equal(t, features.Arity, b.Classifier.Arity())
	assert.Equal(t, 5, b.Classifier.Trees())

	labels, err := b.Registry.Labels(encoder.FieldJobType)
	require.NoError(t, err)
	assert.Equal(t, []string{"Salaried", "Self-Employed", "Unemployed"}, labels)
}

func TestLoadFile_TrainingRecordCodes(t *testing.T) {
	b, err := LoadFile(shippedManifest)
	require.NoError(t, err)

	v, err := features.NewBuilder(b.Registry).Build(models.Application{
		Age:            45,
		AnnualIncome:   120000,
		JobType:        "Self-Employed",
		CreditScore:    0.9,
		MaritalStatus:  "Married",
		EducationLevel: "Master",
	})
	require.NoError(t, err)
	assert.Equal(t, features.Vector{45, 120000, 1, 0.9, 1, 2}, v)

	p, err := b.Classifier.Predict(v.Slice())
	require.NoError(t, err)
	assert.True(t, p.Approved)
	assert.Equal(t, 1.0, p.Probability)
}

func TestLoadFile_PMMLMatchesForest(t *testing.T) {
	forestBundle, err := LoadFile(shippedManifest)
	require.NoError(t, err)
	pmmlBundle, err := LoadFile("testdata/pmml_manifest.json")
	require.NoError(t, err)
	assert.NotEqual(t, forestBundle.Fingerprint, pmmlBundle.Fingerprint)

	vectors := [][]float64{
		{45, 120000, 1, 0.9, 1, 2},
		{25, 50000, 0, 0.65, 2, 0},
		{30, 90000, 2, 0.8, 2, 2},
		{60, 110000, 0, 0.88, 1, 0},
		{42, 95000, 2, 0.6, 3, 3},
	}
	for _, x := range vectors {
		want, err := forestBundle.Classifier.Predict(x)
		require.NoError(t, err)
		got, err := pmmlBundle.Classifier.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, want, got, "vector %v", x)
	}
}

func TestParsePMML_EqualsInlineForest(t *testing.T) {
	m, _ := readManifest(t)
	raw, err := os.ReadFile("testdata/loan_model.pmml")
	require.NoError(t, err)

	forest, err := ParsePMML(raw, features.Names())
	require.NoError(t, err)
	assert.Equal(t, m.Model.Forest, forest)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	var loadErr *classifier.ModelLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestLoadFile_MissingPMML(t *testing.T) {
	m, _ := readManifest(t)
	m.Model = ModelSpec{Format: FormatPMML, Path: "nowhere.pmml"}

	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, encode(t, m), 0600))

	_, err := LoadFile(path)
	var loadErr *classifier.ModelLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte("{not json"), nil)
	var loadErr *classifier.ModelLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestDecode_FeatureArityMismatch(t *testing.T) {
	m, _ := readManifest(t)
	m.Features = m.Features[:5]

	_, err := Decode(encode(t, m), nil)
	var mismatch *classifier.FeatureArityMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 5, mismatch.Model)
	assert.Equal(t, features.Arity, mismatch.Builder)
}

func TestDecode_ModelArityMismatch(t *testing.T) {
	m, _ := readManifest(t)
	m.Model.Forest.NFeatures = 7

	_, err := Decode(encode(t, m), nil)
	var mismatch *classifier.FeatureArityMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestDecode_FeatureOrderMismatch(t *testing.T) {
	m, _ := readManifest(t)
	m.Features[0], m.Features[1] = m.Features[1], m.Features[0]

	_, err := Decode(encode(t, m), nil)
	var loadErr *classifier.ModelLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Manifest)
	}{
		{"missing version", func(m *Manifest) { m.Version = "" }},
		{"missing encoder", func(m *Manifest) { delete(m.Encoders, encoder.FieldEducationLevel) }},
		{"unknown format", func(m *Manifest) { m.Model.Format = "onnx" }},
		{"missing forest", func(m *Manifest) { m.Model.Forest = nil }},
		{"pmml without document", func(m *Manifest) { m.Model = ModelSpec{Format: FormatPMML} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := readManifest(t)
			tt.mutate(&m)

			_, err := Decode(encode(t, m), nil)
			var loadErr *classifier.ModelLoadError
			assert.True(t, errors.As(err, &loadErr), "got %v", err)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("manifest"), nil)
	assert.Equal(t, a, Fingerprint([]byte("manifest"), nil))
	assert.NotEqual(t, a, Fingerprint([]byte("manifest"), []byte("<PMML/>")))
	assert.Len(t, a, 64)
}

func TestReadFiles(t *testing.T) {
	manifest, pmml, err := ReadFiles(shippedManifest)
	require.NoError(t, err)
	assert.NotEmpty(t, manifest)
	assert.Nil(t, pmml)

	manifest, pmml, err = ReadFiles(filepath.Join("testdata", "pmml_manifest.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, manifest)
	assert.Contains(t, string(pmml), "<PMML")

	_, err = Decode(manifest, pmml)
	assert.NoError(t, err)
}
