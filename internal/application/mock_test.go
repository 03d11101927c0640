package app

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"ecosort/internal/domain/entity"
)

func TestMockClassification_SeededByArea(t *testing.T) {
	res := MockClassification(image.NewRGBA(image.Rect(0, 0, 200, 200)))
	require.Equal(t, entity.CategoryRecyclable, res.Category)
	require.Equal(t, 92, res.Confidence)

	wide := MockClassification(image.NewRGBA(image.Rect(0, 0, 300, 7)))
	tall := MockClassification(image.NewGray(image.Rect(0, 0, 7, 300)))
	require.Equal(t, wide, tall)
}

func TestMockClassification_CoversAllCategories(t *testing.T) {
	seen := map[entity.Category]bool{}
	for w := 1; w <= 5; w++ {
		seen[MockClassification(image.NewRGBA(image.Rect(0, 0, w, 1))).Category] = true
	}
	for _, c := range entity.KnownCategories {
		require.True(t, seen[c], c)
	}
}

func TestMockDetections_NonEmptyAndIsolated(t *testing.T) {
	for w := 1; w <= 3; w++ {
		img := image.NewRGBA(image.Rect(0, 0, w, 10))
		dets := MockDetections(img)
		require.NotEmpty(t, dets)
		require.Equal(t, dets, MockDetections(img))
	}

	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	dets := MockDetections(img)
	dets[0].Label = "changed"
	require.Equal(t, "Plastic Bottle", MockDetections(img)[0].Label)
}
