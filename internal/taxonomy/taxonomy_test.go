package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/recongraph/api/schemas"
)

func TestLookupKnownCategories(t *testing.T) {
	tests := []struct {
		category schemas.NodeCategory
		risk     schemas.RiskLevel
	}{
		{schemas.CategoryIP, schemas.RiskMedium},
		{schemas.CategoryDomain, schemas.RiskLow},
		{schemas.CategoryVulnerability, schemas.RiskHigh},
		{schemas.CategoryBreach, schemas.RiskHigh},
		{schemas.CategorySecurityMetric, schemas.RiskMedium},
		{schemas.CategoryUnknownInput, schemas.RiskUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			style := Lookup(tt.category)
			assert.Equal(t, tt.risk, style.DefaultRisk)
			assert.NotEmpty(t, style.Class, "every category must carry a render class")
		})
	}
}

func TestLookupIsTotal(t *testing.T) {
	style := Lookup(schemas.NodeCategory("made-up-category"))
	assert.Equal(t, neutral, style, "unrecognized categories fall back to the neutral style")
	assert.Equal(t, schemas.RiskUnknown, style.DefaultRisk)
}

func TestDefaultRisk(t *testing.T) {
	assert.Equal(t, schemas.RiskHigh, DefaultRisk(schemas.CategoryVulnerability))
	assert.Equal(t, schemas.RiskUnknown, DefaultRisk(schemas.NodeCategory("nonsense")))
}
