package models

// InsurancePolicy is a clinic-side record of an insurance provider relationship.
type InsurancePolicy struct {
	Provider        string `bson:"provider" json:"provider"`
	Accepted        bool   `bson:"accepted" json:"accepted"`
	CoveragePercent int    `bson:"coveragePercent" json:"coveragePercent"`
	CoverageNotes   string `bson:"coverageNotes" json:"coverageNotes"`
}

// CoverageAnswer is the tri-state outcome of an eligibility check.
type CoverageAnswer string

const (
	CoverageYes     CoverageAnswer = "yes"
	CoverageNo      CoverageAnswer = "no"
	CoverageUnknown CoverageAnswer = "unknown"
)

// InsuranceVerification is ephemeral: returned synchronously and cached
// briefly under its query key, never persisted.
type InsuranceVerification struct {
	Covered         CoverageAnswer `json:"covered"`
	CoveragePercent int            `json:"coveragePercent,omitempty"`
	CopayAmount     int            `json:"copayAmount,omitempty"`
	Provider        string         `json:"provider"`
	Procedure       string         `json:"procedure"`
	Notes           string         `json:"notes"`
}
