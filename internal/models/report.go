package models

import "time"

// SearchCategory is the kind of identifier a report carries. The value is
// both the display label and the lookup key in Report.Identifiers.
type SearchCategory string

const (
	CategoryMobile  SearchCategory = "Mobile Number"
	CategoryEmail   SearchCategory = "Email Address"
	CategoryName    SearchCategory = "Full Name"
	CategoryCompany SearchCategory = "Company Name"
	CategoryWebsite SearchCategory = "Website"
	CategorySocial  SearchCategory = "Social Media URL"
	CategoryIMEI    SearchCategory = "Mobile IMEI"
)

var allCategories = []SearchCategory{
	CategoryMobile,
	CategoryEmail,
	CategoryName,
	CategoryCompany,
	CategoryWebsite,
	CategorySocial,
	CategoryIMEI,
}

// AllCategories returns every category in display order.
func AllCategories() []SearchCategory {
	out := make([]SearchCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c SearchCategory) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ReportStatus is the moderation state of a report. Only StatusApproved is
// assigned today; pending and rejected are reserved for a moderation queue.
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusApproved ReportStatus = "approved"
	StatusRejected ReportStatus = "rejected"
)

type ScammerInfo struct {
	Name    string `gorm:"size:255" json:"name,omitempty"`
	Company string `gorm:"size:255" json:"company,omitempty"`
}

// Report is a published scam report. ID and CreatedAt never change once
// assigned.
type Report struct {
	// Seq orders rows by insertion in the SQL store. It never leaves the process.
	Seq           uint64                    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID            string                    `gorm:"size:64;not null;uniqueIndex" json:"id"`
	Categories    []SearchCategory          `gorm:"type:jsonb;serializer:json;not null" json:"categories"`
	Identifiers   map[SearchCategory]string `gorm:"type:jsonb;serializer:json;not null" json:"identifiers"`
	Description   string                    `gorm:"type:text;not null" json:"description"`
	EvidenceLinks []string                  `gorm:"type:jsonb;serializer:json;not null" json:"evidenceLinks"`
	Status        ReportStatus              `gorm:"size:20;not null;index" json:"status"`
	CreatedAt     time.Time                 `gorm:"not null" json:"createdAt"`
	ScammerInfo   ScammerInfo               `gorm:"embedded;embeddedPrefix:scammer_" json:"scammerInfo"`
	IncidentDate  string                    `gorm:"size:64;not null" json:"incidentDate"`
}

func (Report) TableName() string {
	return "scam_reports"
}

// NewReportData is what a reporter supplies. The service assigns everything
// else on Report.
type NewReportData struct {
	Categories   []SearchCategory          `json:"categories"`
	Identifiers  map[SearchCategory]string `json:"identifiers"`
	Description  string                    `json:"description"`
	ScammerInfo  ScammerInfo               `json:"scammerInfo"`
	IncidentDate string                    `json:"incidentDate"`
}

// SafetyAnalysis is the AI-generated advice shown after a report is filed.
type SafetyAnalysis struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
}
