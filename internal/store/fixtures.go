package store

import (
	"time"

	"github.com/scamguard/scamguard-backend/internal/models"
)

const day = 24 * time.Hour

// Fixtures returns the seed reports with timestamps relative to now, in
// store order.
func Fixtures(now time.Time) []models.Report {
	now = now.UTC()
	daysAgo := func(n int) time.Time { return now.Add(-time.Duration(n) * day) }

	return []models.Report{
		{
			ID:         "1",
			Categories: []models.SearchCategory{models.CategoryEmail, models.CategoryWebsite},
			Identifiers: map[models.SearchCategory]string{
				models.CategoryEmail:   "support@fake-bank.com",
				models.CategoryWebsite: "www.fake-bank.com",
			},
			Description:   "Received a phishing email from this address asking for my login details. The website looks convincing but is a fake.",
			EvidenceLinks: []string{},
			Status:        models.StatusApproved,
			CreatedAt:     daysAgo(5),
			ScammerInfo:   models.ScammerInfo{Company: "Fake Bank Inc."},
			IncidentDate:  daysAgo(6).Format(time.RFC3339),
		},
		{
			ID:         "2",
			Categories: []models.SearchCategory{models.CategoryMobile},
			Identifiers: map[models.SearchCategory]string{
				models.CategoryMobile: "18005551234",
			},
			Description:   "Constant calls from this number claiming I won a prize and need to pay a fee to collect it. They became aggressive when I refused.",
			EvidenceLinks: []string{},
			Status:        models.StatusApproved,
			CreatedAt:     daysAgo(2),
			ScammerInfo:   models.ScammerInfo{Name: "John Doe (alias)"},
			IncidentDate:  daysAgo(3).Format(time.RFC3339),
		},
		{
			ID:         "3",
			Categories: []models.SearchCategory{models.CategorySocial},
			Identifiers: map[models.SearchCategory]string{
				models.CategorySocial: "https://facebook.com/profile/scammer123",
			},
			Description:   "This Facebook profile is running a fraudulent investment scheme. They promise high returns but disappear after receiving money.",
			EvidenceLinks: []string{},
			Status:        models.StatusApproved,
			CreatedAt:     daysAgo(10),
			ScammerInfo:   models.ScammerInfo{Name: "Crypto King"},
			IncidentDate:  daysAgo(11).Format(time.RFC3339),
		},
	}
}
