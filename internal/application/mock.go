package app

import (
	"image"

	"ecosort/internal/domain/entity"
)

// Ответы демо-режима без ключа API. Выбор зависит только от площади кадра,
// поэтому один и тот же размер всегда даёт один и тот же ответ.
var mockClassifications = [...]entity.ClassificationResult{
	{
		Category:             entity.CategoryRecyclable,
		Confidence:           92,
		Material:             "Plastic (PET-1)",
		DisposalInstructions: "Rinse the container and remove the cap. Place in your recycling bin.",
		EnvironmentalTip:     "Consider using a reusable water bottle to reduce plastic waste!",
	},
	{
		Category:             entity.CategoryCompostable,
		Confidence:           88,
		Material:             "Organic Food Waste",
		DisposalInstructions: "Place in your compost bin or green waste container. Avoid adding meat or dairy to home compost.",
		EnvironmentalTip:     "Composting reduces methane emissions from landfills and creates nutrient-rich soil!",
	},
	{
		Category:             entity.CategoryLandfill,
		Confidence:           75,
		Material:             "Mixed Materials",
		DisposalInstructions: "This item contains mixed materials that cannot be easily separated. Place in general waste.",
		EnvironmentalTip:     "Try to avoid products with mixed, non-separable materials when possible.",
	},
	{
		Category:             entity.CategoryHazardous,
		Confidence:           95,
		Material:             "Electronic Waste",
		DisposalInstructions: "Do NOT place in regular trash. Take to an e-waste collection center or retailer take-back program.",
		EnvironmentalTip:     "E-waste contains valuable materials that can be recovered and reused!",
	},
	{
		Category:             entity.CategorySpecial,
		Confidence:           90,
		Material:             "Textile (Cotton Blend)",
		DisposalInstructions: "Do not put textiles in the recycling bin. Donate wearable items or take them to a textile collection point.",
		EnvironmentalTip:     "Repairing and reusing clothes saves water and energy used in textile production!",
	},
}

var mockDetections = [...][]entity.Detection{
	{
		{Box: entity.Box{200, 100, 600, 400}, Label: "Plastic Bottle", Category: entity.CategoryRecyclable, Confidence: 92},
		{Box: entity.Box{300, 500, 700, 850}, Label: "Food Container", Category: entity.CategoryCompostable, Confidence: 85},
	},
	{
		{Box: entity.Box{150, 200, 500, 600}, Label: "Glass Jar", Category: entity.CategoryRecyclable, Confidence: 88},
		{Box: entity.Box{400, 100, 800, 400}, Label: "Cardboard Box", Category: entity.CategoryRecyclable, Confidence: 90},
	},
	{
		{Box: entity.Box{100, 150, 450, 500}, Label: "Banana Peel", Category: entity.CategoryCompostable, Confidence: 95},
		{Box: entity.Box{300, 400, 650, 750}, Label: "Vegetable Scraps", Category: entity.CategoryCompostable, Confidence: 91},
		{Box: entity.Box{500, 200, 850, 550}, Label: "Paper Bag", Category: entity.CategoryRecyclable, Confidence: 87},
	},
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}

// MockClassification демо-ответ классификации для кадра.
func MockClassification(img image.Image) entity.ClassificationResult {
	return mockClassifications[area(img)%len(mockClassifications)]
}

// MockDetections демо-набор объектов для кадра; всегда непустой.
func MockDetections(img image.Image) []entity.Detection {
	return entity.CloneDetections(mockDetections[area(img)%len(mockDetections)])
}
