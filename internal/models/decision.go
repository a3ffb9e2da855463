package models

// RiskLevel is the qualitative risk tier of a decision
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Assessment is the risk reading derived from an approval confidence
type Assessment struct {
	Risk  float64   `json:"risk"`
	Level RiskLevel `json:"risk_level"`
}

// Decision represents the scored outcome of one application
type Decision struct {
	Approved         bool      `json:"approved"`
	Confidence       float64   `json:"confidence"` // Probability of approval
	Risk             float64   `json:"risk"`
	RiskLevel        RiskLevel `json:"risk_level"`
	ModelVersion     string    `json:"model_version"`
	ModelFingerprint string    `json:"model_fingerprint"`
}
