package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
	"ecosort/internal/infrastructure/vision"
)

func newDetector(model port.VisionModel, interval time.Duration) (*DetectionService, *RateLimiter) {
	limiter := NewRateLimiter(interval, time.Minute)
	return NewDetectionService(model, vision.NewPreprocessor(), vision.NewAnnotator(), limiter, nil), limiter
}

func TestDetect_MockMode(t *testing.T) {
	svc, _ := newDetector(nil, time.Second)
	img := testImage(30, 10)

	out := svc.Detect(context.Background(), img)
	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.Len(t, out.Detections, 2)
	require.Equal(t, "Plastic Bottle", out.Detections[0].Label)
	require.NotSame(t, img, out.Annotated)
}

func TestDetect_ParsesAndAnnotates(t *testing.T) {
	model := &fakeModel{text: `{"detections":[{"box":[100,100,900,900],"label":"Can","category":"recyclable","confidence":80}]}`}
	svc, _ := newDetector(model, time.Millisecond)
	img := testImage(50, 50)

	out := svc.Detect(context.Background(), img)
	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.Equal(t, []entity.Detection{{
		Box: entity.Box{100, 100, 900, 900}, Label: "Can", Category: entity.CategoryRecyclable, Confidence: 80,
	}}, out.Detections)
	require.NotEqual(t, img.At(5, 5), out.Annotated.At(5, 5))
	require.Equal(t, []string{DetectionPrompt}, model.prompts)
}

func TestDetect_NotJSONGivesEmptyList(t *testing.T) {
	svc, _ := newDetector(&fakeModel{text: "not json"}, time.Millisecond)
	img := testImage(20, 20)

	out := svc.Detect(context.Background(), img)
	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.NotNil(t, out.Detections)
	require.Empty(t, out.Detections)
	require.Same(t, img, out.Annotated)
}

func TestDetect_EmptyResponse(t *testing.T) {
	svc, _ := newDetector(&fakeModel{text: ""}, time.Millisecond)
	out := svc.Detect(context.Background(), testImage(20, 20))
	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.Empty(t, out.Detections)
}

func TestDetect_ThrottledByInterval(t *testing.T) {
	model := &fakeModel{text: `{"detections": []}`}
	svc, _ := newDetector(model, time.Hour)
	img := testImage(20, 20)

	require.Equal(t, OutcomeSuccess, svc.Detect(context.Background(), img).Outcome)
	out := svc.Detect(context.Background(), img)
	require.Equal(t, OutcomeThrottled, out.Outcome)
	require.Same(t, img, out.Annotated)
	require.Equal(t, 1, model.Calls())
}

func TestDetect_QuotaStartsCooldown(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("gemini: %w", port.ErrQuotaExceeded)}
	svc, limiter := newDetector(model, time.Millisecond)
	img := testImage(20, 20)

	out := svc.Detect(context.Background(), img)
	require.Equal(t, OutcomeFailed, out.Outcome)
	require.ErrorIs(t, out.Err, port.ErrQuotaExceeded)
	require.Contains(t, out.Message, "quota")
	require.Same(t, img, out.Annotated)
	require.True(t, limiter.QuotaExceeded())

	time.Sleep(5 * time.Millisecond)
	require.Equal(t, OutcomeThrottled, svc.Detect(context.Background(), img).Outcome)
	require.Equal(t, 1, model.Calls())
}

func TestDetect_GenericFailure(t *testing.T) {
	svc, limiter := newDetector(&fakeModel{err: errors.New("boom")}, time.Millisecond)

	out := svc.Detect(context.Background(), testImage(20, 20))
	require.Equal(t, OutcomeFailed, out.Outcome)
	require.Empty(t, out.Detections)
	require.NotEmpty(t, out.Message)
	require.False(t, limiter.QuotaExceeded())
}
