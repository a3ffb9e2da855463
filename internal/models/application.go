package models

// Application represents a loan application submitted for scoring
type Application struct {
	ApplicantID    string  `json:"applicant_id,omitempty"`
	FullName       string  `json:"full_name,omitempty"`
	ContactEmail   string  `json:"contact_email,omitempty"`
	Age            int     `json:"age"`
	AnnualIncome   float64 `json:"annual_income"`
	JobType        string  `json:"job_type"`
	CreditScore    float64 `json:"credit_score"`
	MaritalStatus  string  `json:"marital_status"`
	EducationLevel string  `json:"education_level"`
}
