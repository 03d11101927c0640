package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxRect(t *testing.T) {
	b := Box{200, 100, 600, 400}
	require.Equal(t, image.Rect(64, 96, 256, 288), b.Rect(640, 480))
}

func TestBoxRect_ClampsOutOfRange(t *testing.T) {
	b := Box{-50, -10, 1200, 1000}
	require.Equal(t, image.Rect(0, 0, 100, 200), b.Rect(100, 200))
}

func TestCloneDetections(t *testing.T) {
	src := []Detection{{Label: "Glass Jar", Category: CategoryRecyclable, Confidence: 88}}
	dst := CloneDetections(src)
	dst[0].Label = "changed"
	require.Equal(t, "Glass Jar", src[0].Label)
	require.Nil(t, CloneDetections(nil))
}
