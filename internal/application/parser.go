package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ecosort/internal/domain/entity"
)

const (
	fence            = "```"
	parseUserMessage = "Unable to understand AI response. Please try again."
)

// ExtractPayload вырезает JSON из ответа модели.
// Приоритет: первый блок ```json, затем первый любой блок ```, иначе весь текст.
func ExtractPayload(text string) string {
	text = strings.TrimSpace(text)

	for i := strings.Index(text, fence); i >= 0; {
		tag := text[i+len(fence):]
		if len(tag) >= 4 && strings.EqualFold(tag[:4], "json") {
			return strings.TrimSpace(untilFence(tag[4:]))
		}
		next := strings.Index(text[i+len(fence):], fence)
		if next < 0 {
			break
		}
		i += len(fence) + next
	}

	if i := strings.Index(text, fence); i >= 0 {
		block := untilFence(text[i+len(fence):])
		return strings.TrimSpace(skipLanguageTag(block))
	}

	return text
}

func untilFence(s string) string {
	if j := strings.Index(s, fence); j >= 0 {
		return s[:j]
	}
	return s
}

// skipLanguageTag убирает метку языка в первой строке блока (```js, ```text).
func skipLanguageTag(block string) string {
	nl := strings.IndexByte(block, '\n')
	if nl < 0 {
		return block
	}
	first := strings.TrimSpace(block[:nl])
	if first == "" || strings.ContainsAny(first, "{}[]\" ") {
		return block
	}
	return block[nl+1:]
}

// ParseClassification разбирает ответ классификации.
// Поля category и confidence обязательны.
func ParseClassification(text string) (*entity.ClassificationResult, error) {
	payload := ExtractPayload(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, &ParseError{Msg: "failed to parse AI response", UserMessage: parseUserMessage, Err: err}
	}

	for _, name := range []string{"category", "confidence"} {
		if raw, ok := fields[name]; !ok || isNull(raw) {
			return nil, &ParseError{
				Msg:         fmt.Sprintf("failed to parse AI response: missing required field: %s", name),
				UserMessage: parseUserMessage,
			}
		}
	}

	var category string
	if err := json.Unmarshal(fields["category"], &category); err != nil {
		return nil, &ParseError{Msg: "failed to parse AI response: category is not a string", UserMessage: parseUserMessage, Err: err}
	}
	confidence, err := parseConfidence(fields["confidence"])
	if err != nil {
		return nil, &ParseError{Msg: "failed to parse AI response: bad confidence", UserMessage: parseUserMessage, Err: err}
	}

	return &entity.ClassificationResult{
		Category:             entity.ParseCategory(category),
		Confidence:           confidence,
		Material:             optionalString(fields["material"]),
		DisposalInstructions: optionalString(fields["disposal_instructions"]),
		EnvironmentalTip:     optionalString(fields["environmental_tip"]),
	}, nil
}

// ParseDetections разбирает ответ детекции. Никогда не возвращает ошибку:
// некорректный ответ даёт пустой список, элементы с плохой рамкой отбрасываются.
func ParseDetections(text string) []entity.Detection {
	detections := []entity.Detection{}
	payload := ExtractPayload(text)

	var items []json.RawMessage
	trimmed := bytes.TrimSpace([]byte(payload))
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return detections
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return detections
		}
		if err := json.Unmarshal(wrapper["detections"], &items); err != nil {
			return detections
		}
	default:
		return detections
	}

	for _, raw := range items {
		if det, ok := parseDetection(raw); ok {
			detections = append(detections, det)
		}
	}
	return detections
}

func parseDetection(raw json.RawMessage) (entity.Detection, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return entity.Detection{}, false
	}

	var coords []float64
	if err := json.Unmarshal(fields["box"], &coords); err != nil || len(coords) != 4 {
		return entity.Detection{}, false
	}

	det := entity.Detection{
		Box:      entity.Box{coords[0], coords[1], coords[2], coords[3]},
		Label:    optionalString(fields["label"]),
		Category: entity.ParseCategory(optionalString(fields["category"])),
	}
	if raw, ok := fields["confidence"]; ok {
		det.Confidence, _ = parseConfidence(raw)
	}
	return det, true
}

// parseConfidence принимает число или строку с числом, округляет и ограничивает 0–100.
func parseConfidence(raw json.RawMessage) (int, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if errStr := json.Unmarshal(raw, &s); errStr != nil {
			return 0, err
		}
		parsed, errNum := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if errNum != nil {
			return 0, errNum
		}
		v = parsed
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("confidence is NaN")
	}
	return int(math.Round(math.Max(0, math.Min(100, v)))), nil
}

func optionalString(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
