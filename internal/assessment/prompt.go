package assessment

import (
	"fmt"
	"strings"
)

type SchemaType string

const (
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
	TypeString SchemaType = "string"
	TypeNumber SchemaType = "number"
)

// Schema is a provider neutral description of the JSON a Generator must
// return.
type Schema struct {
	Type       SchemaType
	Properties map[string]*Schema
	Items      *Schema
	Required   []string
}

const (
	fieldMentalScore     = "mentalScore"
	fieldPhysicalScore   = "physicalScore"
	fieldOverallRisk     = "overallRisk"
	fieldLevel           = "level"
	fieldRoute           = "route"
	fieldReasoning       = "reasoning"
	fieldRecommendations = "recommendations"
)

// AssessmentSchema returns a fresh copy so callers may not alter the
// shared contract.
func AssessmentSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			fieldMentalScore:     {Type: TypeNumber},
			fieldPhysicalScore:   {Type: TypeNumber},
			fieldOverallRisk:     {Type: TypeNumber},
			fieldLevel:           {Type: TypeString},
			fieldRoute:           {Type: TypeString},
			fieldReasoning:       {Type: TypeString},
			fieldRecommendations: {Type: TypeArray, Items: &Schema{Type: TypeString}},
		},
		Required: []string{
			fieldMentalScore, fieldPhysicalScore, fieldOverallRisk,
			fieldLevel, fieldRoute, fieldReasoning, fieldRecommendations,
		},
	}
}

const assessmentTemplate = `Analyze the following patient inputs for health risk.
Mental/Emotional State: %q
Physical Symptoms: %q

Provide a structured health risk assessment in JSON format.
- mentalScore: 0-100
- physicalScore: 0-100
- overallRisk: 0-100
- level: LOW, MEDIUM, HIGH, or CRITICAL
- route: SELF_CARE, TELECONSULTATION, or EMERGENCY
- reasoning: Brief explanation
- recommendations: Array of 3 strings`

const conversationTemplate = `You are CareFusion AI, an intelligent healthcare orchestrator.
Context: %s
User Message: %s

Provide a helpful, empathetic, and professional medical guidance response.
Do not diagnose, but guide the user to the right care level.
Keep it concise.`

const defaultChatContext = "User is seeking general health guidance."

func assessmentPrompt(mental, physical string) string {
	return fmt.Sprintf(assessmentTemplate, strings.TrimSpace(mental), strings.TrimSpace(physical))
}

func conversationPrompt(message, context string) string {
	context = strings.TrimSpace(context)
	if context == "" {
		context = defaultChatContext
	}
	return fmt.Sprintf(conversationTemplate, context, strings.TrimSpace(message))
}
