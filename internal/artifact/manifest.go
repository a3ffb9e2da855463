// Package artifact loads the versioned model manifest: encoders, feature order and the trained forest.
package artifact

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dan9191/loan-approval/internal/classifier"
	"github.com/Dan9191/loan-approval/internal/encoder"
	"github.com/Dan9191/loan-approval/internal/features"
	"golang.org/x/crypto/blake2b"
)

// Supported model encodings
const (
	FormatForest = "forest"
	FormatPMML   = "pmml"
)

// Manifest describes a trained model and the encoders it was trained with
type Manifest struct {
	Name     string                     `json:"name"`
	Version  string                     `json:"version"`
	Features []string                   `json:"features"`
	Encoders map[string][]encoder.Entry `json:"encoders"`
	Model    ModelSpec                  `json:"model"`
}

// ModelSpec points at the model itself, inline or in a PMML document
type ModelSpec struct {
	Format string             `json:"format"`
	Path   string             `json:"path,omitempty"` // PMML file, relative to the manifest
	Forest *classifier.Forest `json:"forest,omitempty"`
}

// Bundle is a fully validated model ready to serve predictions
type Bundle struct {
	Name        string
	Version     string
	Features    []string
	Fingerprint string
	Registry    *encoder.Registry
	Classifier  *classifier.Classifier
}

// LoadFile reads a manifest and, for PMML models, the document it references
func LoadFile(path string) (*Bundle, error) {
	manifest, pmml, err := ReadFiles(path)
	if err != nil {
		return nil, err
	}
	return Decode(manifest, pmml)
}

// ReadFiles returns the raw manifest and PMML documents without validating the model.
// pmml is nil for inline forests.
func ReadFiles(path string) (manifest, pmml []byte, err error) {
	manifest, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, &classifier.ModelLoadError{Reason: "read manifest " + path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(manifest, &m); err != nil {
		return nil, nil, &classifier.ModelLoadError{Reason: "parse manifest", Err: err}
	}
	if m.Model.Format != FormatPMML {
		return manifest, nil, nil
	}
	if m.Model.Path == "" {
		return nil, nil, &classifier.ModelLoadError{Reason: "pmml model without path"}
	}

	p := m.Model.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(path), p)
	}
	if pmml, err = os.ReadFile(p); err != nil {
		return nil, nil, &classifier.ModelLoadError{Reason: "read pmml " + p, Err: err}
	}
	return manifest, pmml, nil
}

// Decode validates a manifest and builds the registry and classifier it describes
func Decode(manifest, pmml []byte) (*Bundle, error) {
	var m Manifest
	if err := json.Unmarshal(manifest, &m); err != nil {
		return nil, &classifier.ModelLoadError{Reason: "parse manifest", Err: err}
	}
	if m.Name == "" || m.Version == "" {
		return nil, &classifier.ModelLoadError{Reason: "manifest name and version are required"}
	}
	if err := checkFeatures(m.Features); err != nil {
		return nil, err
	}

	registry, err := encoder.NewRegistry(m.Encoders)
	if err != nil {
		return nil, &classifier.ModelLoadError{Reason: "invalid encoders", Err: err}
	}

	var forest *classifier.Forest
	switch m.Model.Format {
	case FormatForest:
		forest = m.Model.Forest
	case FormatPMML:
		if len(pmml) == 0 {
			return nil, &classifier.ModelLoadError{Reason: "pmml document is empty"}
		}
		if forest, err = ParsePMML(pmml, m.Features); err != nil {
			return nil, &classifier.ModelLoadError{Reason: "parse pmml", Err: err}
		}
	default:
		return nil, &classifier.ModelLoadError{Reason: fmt.Sprintf("unsupported model format %q", m.Model.Format)}
	}

	c, err := classifier.New(forest, features.Arity)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Name:        m.Name,
		Version:     m.Version,
		Features:    m.Features,
		Fingerprint: Fingerprint(manifest, pmml),
		Registry:    registry,
		Classifier:  c,
	}, nil
}

// checkFeatures requires the manifest to list exactly the builder's features in the builder's order
func checkFeatures(names []string) error {
	want := features.Names()
	if len(names) != len(want) {
		return &classifier.FeatureArityMismatchError{Model: len(names), Builder: len(want)}
	}
	for i := range want {
		if names[i] != want[i] {
			return &classifier.ModelLoadError{Reason: fmt.Sprintf("feature %d is %q, want %q", i, names[i], want[i])}
		}
	}
	return nil
}

// Fingerprint returns the BLAKE2b-256 digest of the artifact documents
func Fingerprint(manifest, pmml []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write(manifest)
	h.Write(pmml)
	return hex.EncodeToString(h.Sum(nil))
}
