package entity

import (
	"image/color"
	"strings"
)

// Category категория утилизации отходов
type Category string

const (
	CategoryRecyclable  Category = "recyclable"  // Вторсырьё
	CategoryCompostable Category = "compostable" // Компост
	CategoryLandfill    Category = "landfill"    // Общий мусор
	CategoryHazardous   Category = "hazardous"   // Опасные отходы
	CategorySpecial     Category = "special"     // Особая утилизация
)

// KnownCategories перечисляет все распознаваемые категории.
var KnownCategories = []Category{
	CategoryRecyclable,
	CategoryCompostable,
	CategoryLandfill,
	CategoryHazardous,
	CategorySpecial,
}

// ParseCategory приводит известную категорию к каноническому виду.
// Нераспознанное значение возвращается как есть, без изменений.
func ParseCategory(raw string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(raw)))
	if normalized.Known() {
		return normalized
	}
	return Category(raw)
}

// Known сообщает, входит ли категория в список известных
func (c Category) Known() bool {
	switch c {
	case CategoryRecyclable, CategoryCompostable, CategoryLandfill, CategoryHazardous, CategorySpecial:
		return true
	}
	return false
}

// Guidance подсказки для отображения категории пользователю.
type Guidance struct {
	Icon        string     `json:"icon"`
	Title       string     `json:"title"`
	Instruction string     `json:"instruction"`
	Description string     `json:"description"`
	Color       color.RGBA `json:"-"`
}

var unknownGuidance = Guidance{
	Icon:        "⚪",
	Title:       "Unknown",
	Instruction: "Check guidelines",
	Description: "Unknown classification",
	Color:       color.RGBA{R: 150, G: 150, B: 150, A: 255},
}

var guidance = map[Category]Guidance{
	CategoryRecyclable: {
		Icon:        "♻️",
		Title:       "Recyclable",
		Instruction: "Recycle bin",
		Description: "This item can be recycled!",
		Color:       color.RGBA{R: 0, G: 200, B: 100, A: 255},
	},
	CategoryCompostable: {
		Icon:        "🌱",
		Title:       "Compostable",
		Instruction: "Compost",
		Description: "This item can be composted!",
		Color:       color.RGBA{R: 139, G: 90, B: 43, A: 255},
	},
	CategoryLandfill: {
		Icon:        "🗑️",
		Title:       "Landfill",
		Instruction: "General waste",
		Description: "This item goes in the trash.",
		Color:       color.RGBA{R: 100, G: 100, B: 100, A: 255},
	},
	CategoryHazardous: {
		Icon:        "⚠️",
		Title:       "Hazardous",
		Instruction: "Special collection",
		Description: "This item requires special handling!",
		Color:       color.RGBA{R: 220, G: 50, B: 50, A: 255},
	},
	CategorySpecial: {
		Icon:        "📦",
		Title:       "Special",
		Instruction: "Check guidelines",
		Description: "This item requires special disposal.",
		Color:       color.RGBA{R: 220, G: 180, B: 50, A: 255},
	},
}

// Guidance возвращает подсказки по категории; для неизвестной нейтральные.
func (c Category) Guidance() Guidance {
	if g, ok := guidance[ParseCategory(string(c))]; ok {
		return g
	}
	return unknownGuidance
}
