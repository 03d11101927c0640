package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ecosort/internal/domain/entity"
)

const cleanClassification = `{"category": "recyclable", "confidence": 92, "material": "Plastic (PET-1)", "disposal_instructions": "Rinse it.", "environmental_tip": "Reuse bottles."}`

func TestExtractPayload(t *testing.T) {
	cases := map[string]string{
		"plain":          `  {"a":1}  `,
		"json fence":     "```json\n{\"a\":1}\n```",
		"upper tag":      "Here you go:\n```JSON\n{\"a\":1}\n```\nthanks",
		"bare fence":     "```\n{\"a\":1}\n```",
		"other tag":      "```javascript\n{\"a\":1}\n```",
		"json preferred": "```text\nnotes\n```\n```json\n{\"a\":1}\n```",
	}
	for name, in := range cases {
		require.Equal(t, `{"a":1}`, ExtractPayload(in), name)
	}
}

func TestParseClassification_Clean(t *testing.T) {
	res, err := ParseClassification(cleanClassification)
	require.NoError(t, err)
	require.Equal(t, entity.CategoryRecyclable, res.Category)
	require.Equal(t, 92, res.Confidence)
	require.Equal(t, "Plastic (PET-1)", res.Material)
	require.True(t, res.HasTip())

	again, err := ParseClassification(cleanClassification)
	require.NoError(t, err)
	require.Equal(t, res, again)
}

func TestParseClassification_Fenced(t *testing.T) {
	res, err := ParseClassification("```json\n{\"category\":\"hazardous\",\"confidence\":95}\n```")
	require.NoError(t, err)
	require.Equal(t, entity.CategoryHazardous, res.Category)
	require.Equal(t, 95, res.Confidence)
	require.False(t, res.HasTip())

	bare, err := ParseClassification("```\n" + cleanClassification + "\n```")
	require.NoError(t, err)
	clean, err := ParseClassification(cleanClassification)
	require.NoError(t, err)
	require.Equal(t, clean, bare)
}

func TestParseClassification_MissingRequired(t *testing.T) {
	for _, in := range []string{
		`{"material":"plastic"}`,
		`{"category":"landfill"}`,
		`{"confidence":80}`,
		`{"category":null,"confidence":80}`,
	} {
		_, err := ParseClassification(in)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), in)
		require.Contains(t, perr.Error(), "missing required field")
		require.Equal(t, "Unable to understand AI response. Please try again.", UserMessage(err))
	}
}

func TestParseClassification_NotJSON(t *testing.T) {
	_, err := ParseClassification("The item looks like a bottle.")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.NotNil(t, perr.Unwrap())
}

func TestParseClassification_UnknownCategoryPreserved(t *testing.T) {
	res, err := ParseClassification(`{"category":"Reusable","confidence":"88"}`)
	require.NoError(t, err)
	require.Equal(t, entity.Category("Reusable"), res.Category)
	require.False(t, res.Category.Known())
	require.Equal(t, 88, res.Confidence)
}

func TestParseClassification_ConfidenceClamped(t *testing.T) {
	res, err := ParseClassification(`{"category":"landfill","confidence":140.6}`)
	require.NoError(t, err)
	require.Equal(t, 100, res.Confidence)

	_, err = ParseClassification(`{"category":"landfill","confidence":"high"}`)
	require.Error(t, err)
}

func TestParseDetections_NeverFails(t *testing.T) {
	for _, in := range []string{"not json", "", "42", `"text"`, `{"objects": []}`, `{"detections": "none"}`, "```json\n{broken\n```"} {
		got := ParseDetections(in)
		require.NotNil(t, got, in)
		require.Empty(t, got, in)
	}
}

func TestParseDetections_Shapes(t *testing.T) {
	entry := `{"box": [200, 100, 600, 400], "label": "Plastic Bottle", "category": "Recyclable", "confidence": 92}`

	wrapped := ParseDetections("```json\n{\"detections\": [" + entry + "]}\n```")
	bare := ParseDetections("[" + entry + "]")

	require.Len(t, wrapped, 1)
	require.Equal(t, wrapped, bare)
	require.Equal(t, entity.Detection{
		Box:        entity.Box{200, 100, 600, 400},
		Label:      "Plastic Bottle",
		Category:   entity.CategoryRecyclable,
		Confidence: 92,
	}, wrapped[0])
}

func TestParseDetections_DropsBadBoxes(t *testing.T) {
	got := ParseDetections(`{"detections": [
		{"box": [1, 2, 3], "label": "short"},
		{"box": [1, 2, 3, 4, 5], "label": "long"},
		{"box": ["a", 2, 3, 4], "label": "text"},
		"not an object",
		{"label": "no box"},
		{"box": [10, 20, 30, 40], "label": "ok", "category": "e-waste"}
	]}`)
	require.Len(t, got, 1)
	require.Equal(t, "ok", got[0].Label)
	require.Equal(t, entity.Category("e-waste"), got[0].Category)
	require.Zero(t, got[0].Confidence)
}

func TestParseDetections_EmptyList(t *testing.T) {
	got := ParseDetections(`{"detections": []}`)
	require.NotNil(t, got)
	require.Empty(t, got)
}
