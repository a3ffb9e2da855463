package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/loan-approval/internal/artifact"
	"github.com/Dan9191/loan-approval/internal/encoder"
	"github.com/Dan9191/loan-approval/internal/features"
	"github.com/Dan9191/loan-approval/internal/history"
	"github.com/Dan9191/loan-approval/internal/metrics"
	"github.com/Dan9191/loan-approval/internal/models"
	"github.com/Dan9191/loan-approval/internal/risk"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a decision to the applicant
type Notifier interface {
	SendDecision(app models.Application, decision models.Decision) error
}

// ModelInfo describes the model currently serving predictions
type ModelInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	Features    []string `json:"features"`
	Trees       int      `json:"trees"`
}

// Service handles business logic
type Service struct {
	bundle   *artifact.Bundle
	builder  *features.Builder
	notifier Notifier
	log      *logrus.Logger
	wg       sync.WaitGroup
}

// NewService initializes a new service. notifier may be nil.
func NewService(bundle *artifact.Bundle, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{
		bundle:   bundle,
		builder:  features.NewBuilder(bundle.Registry),
		notifier: notifier,
		log:      log,
	}
}

// Score validates and scores an application without recording it
func (s *Service) Score(app models.Application) (models.Decision, error) {
	start := time.Now()

	vec, err := s.builder.Build(app)
	if err != nil {
		metrics.PredictionRejections.WithLabelValues(rejectionReason(err)).Inc()
		return models.Decision{}, err
	}

	pred, err := s.bundle.Classifier.Predict(vec.Slice())
	if err != nil {
		return models.Decision{}, fmt.Errorf("failed to score application: %w", err)
	}
	assessment := risk.Evaluate(pred.Probability)
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	decision := models.Decision{
		Approved:         pred.Approved,
		Confidence:       pred.Probability,
		Risk:             assessment.Risk,
		RiskLevel:        assessment.Level,
		ModelVersion:     s.bundle.Version,
		ModelFingerprint: s.bundle.Fingerprint,
	}
	metrics.PredictionsTotal.WithLabelValues(metrics.Outcome(decision.Approved)).Inc()
	metrics.RiskLevels.WithLabelValues(string(decision.RiskLevel)).Inc()
	return decision, nil
}

// Submit scores an application and appends it to the ledger.
// Rejected applications leave the ledger untouched.
func (s *Service) Submit(ledger *history.Ledger, app models.Application) (models.HistoryEntry, error) {
	decision, err := s.Score(app)
	if err != nil {
		s.log.WithError(err).WithField("applicant_id", app.ApplicantID).Info("Application rejected")
		return models.HistoryEntry{}, err
	}

	entry := ledger.Append(app, decision)
	s.log.WithFields(logrus.Fields{
		"entry_id":   entry.ID,
		"approved":   decision.Approved,
		"confidence": decision.Confidence,
		"risk_level": decision.RiskLevel,
	}).Info("Application scored")

	if s.notifier != nil && app.ContactEmail != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.notifier.SendDecision(app, decision); err != nil {
				metrics.NotificationsFailed.Inc()
				s.log.WithError(err).WithField("entry_id", entry.ID).Warn("Decision e-mail not delivered")
			}
		}()
	}
	return entry, nil
}

// Wait blocks until pending decision e-mails have been handed off
func (s *Service) Wait() {
	s.wg.Wait()
}

// Options returns the accepted labels of each categorical field, ordered by code
func (s *Service) Options() map[string][]string {
	return s.bundle.Registry.Options()
}

// Model describes the loaded artifact
func (s *Service) Model() ModelInfo {
	return ModelInfo{
		Name:        s.bundle.Name,
		Version:     s.bundle.Version,
		Fingerprint: s.bundle.Fingerprint,
		Features:    append([]string(nil), s.bundle.Features...),
		Trees:       s.bundle.Classifier.Trees(),
	}
}

func rejectionReason(err error) string {
	var unknown *encoder.UnknownLabelError
	if errors.As(err, &unknown) {
		return "unknown_label"
	}
	var invalid *features.InvalidFieldError
	if errors.As(err, &invalid) {
		return "invalid_field"
	}
	return "other"
}
