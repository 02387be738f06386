package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Skufu/CareFusion/internal/assessment"
)

func TestGenerateConfig_FreeText(t *testing.T) {
	assert.Nil(t, generateConfig(nil))
}

func TestGenerateConfig_AssessmentSchema(t *testing.T) {
	cfg := generateConfig(assessment.AssessmentSchema())
	require.NotNil(t, cfg)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)

	s := cfg.ResponseSchema
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{
		"mentalScore", "physicalScore", "overallRisk",
		"level", "route", "reasoning", "recommendations",
	}, s.Required)

	assert.Equal(t, genai.TypeNumber, s.Properties["overallRisk"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["reasoning"].Type)

	recs := s.Properties["recommendations"]
	require.NotNil(t, recs)
	assert.Equal(t, genai.TypeArray, recs.Type)
	require.NotNil(t, recs.Items)
	assert.Equal(t, genai.TypeString, recs.Items.Type)
}
