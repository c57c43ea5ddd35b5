package store_test

import (
	"testing"
	"time"

	"github.com/scamguard/scamguard-backend/internal/models"
	"github.com/scamguard/scamguard-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtures(t *testing.T) {
	fixtures := store.Fixtures(fixedNow)
	require.Len(t, fixtures, 3)

	tests := []struct {
		id           string
		categories   []models.SearchCategory
		createdDays  int
		incidentDays int
	}{
		{"1", []models.SearchCategory{models.CategoryEmail, models.CategoryWebsite}, 5, 6},
		{"2", []models.SearchCategory{models.CategoryMobile}, 2, 3},
		{"3", []models.SearchCategory{models.CategorySocial}, 10, 11},
	}
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			f := fixtures[i]
			assert.Equal(t, tt.id, f.ID)
			assert.Equal(t, tt.categories, f.Categories)
			assert.Len(t, f.Identifiers, len(tt.categories))
			for _, c := range tt.categories {
				assert.NotEmpty(t, f.Identifiers[c])
			}
			assert.Equal(t, models.StatusApproved, f.Status)
			assert.Equal(t, []string{}, f.EvidenceLinks)
			assert.Equal(t, fixedNow.Add(-time.Duration(tt.createdDays)*24*time.Hour), f.CreatedAt)

			incident, err := time.Parse(time.RFC3339, f.IncidentDate)
			require.NoError(t, err)
			assert.Equal(t, fixedNow.Add(-time.Duration(tt.incidentDays)*24*time.Hour), incident)
		})
	}
}

func TestFixtures_Reproducible(t *testing.T) {
	assert.Equal(t, store.Fixtures(fixedNow), store.Fixtures(fixedNow))
}
