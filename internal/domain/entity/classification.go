package entity

// ClassificationResult итог классификации одного снимка.
type ClassificationResult struct {
	Category             Category `json:"category"`   // категория утилизации
	Confidence           int      `json:"confidence"` // уверенность 0–100
	Material             string   `json:"material"`
	DisposalInstructions string   `json:"disposal_instructions"`
	EnvironmentalTip     string   `json:"environmental_tip,omitempty"`
}

// HasTip сообщает, есть ли экологический совет
func (r ClassificationResult) HasTip() bool {
	return r.EnvironmentalTip != ""
}

// LowConfidence сообщает, что уверенность ниже порога (порог носит рекомендательный характер).
func (r ClassificationResult) LowConfidence(threshold int) bool {
	return r.Confidence < threshold
}
