package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/loan-approval/internal/classifier"
)

// ErrArtifactNotFound is returned when no artifact is stored under the requested name
var ErrArtifactNotFound = errors.New("artifact not found")

// Record is a stored model artifact
type Record struct {
	Name        string
	Version     string
	Manifest    []byte
	PMML        []byte
	Fingerprint string
	CreatedAt   time.Time
}

// Repository provides access to published model artifacts
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Latest retrieves the most recently published artifact with the given name
func (r *Repository) Latest(ctx context.Context, name string) (*Record, error) {
	rec := &Record{}
	var pmml sql.NullString
	query := `
		SELECT name, version, manifest, pmml, fingerprint, created_at
		FROM scoring.model_artifacts
		WHERE name = $1
		ORDER BY created_at DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, name).
		Scan(&rec.Name, &rec.Version, &rec.Manifest, &pmml, &rec.Fingerprint, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find artifact: %w", err)
	}
	if pmml.Valid {
		rec.PMML = []byte(pmml.String)
	}
	return rec, nil
}

// Publish stores a new artifact version. The manifest is written as text so it reads back byte for byte.
func (r *Repository) Publish(ctx context.Context, rec *Record) error {
	var pmml sql.NullString
	if len(rec.PMML) > 0 {
		pmml = sql.NullString{String: string(rec.PMML), Valid: true}
	}
	query := `
		INSERT INTO scoring.model_artifacts (name, version, manifest, pmml, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, rec.Name, rec.Version, string(rec.Manifest), pmml, rec.Fingerprint).
		Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}

// LoadLatest fetches the newest artifact and decodes it into a bundle.
// The decoded fingerprint must equal the one recorded at publish time.
func LoadLatest(ctx context.Context, repo *Repository, name string) (*Bundle, error) {
	rec, err := repo.Latest(ctx, name)
	if err != nil {
		return nil, &classifier.ModelLoadError{Reason: "fetch artifact " + name, Err: err}
	}
	b, err := Decode(rec.Manifest, rec.PMML)
	if err != nil {
		return nil, err
	}
	if b.Fingerprint != rec.Fingerprint {
		return nil, &classifier.ModelLoadError{Reason: fmt.Sprintf(
			"artifact %s %s fingerprint %s does not match published %s", rec.Name, rec.Version, b.Fingerprint, rec.Fingerprint)}
	}
	return b, nil
}

// LoadDatabase checks the connection and loads the newest artifact from it
func LoadDatabase(ctx context.Context, db *sql.DB, name string) (*Bundle, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, &classifier.ModelLoadError{Reason: "ping artifact database", Err: err}
	}
	return LoadLatest(ctx, NewRepository(db), name)
}
