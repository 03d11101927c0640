package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ecosort/internal/domain/entity"
	"ecosort/internal/infrastructure/storage"
	"ecosort/internal/infrastructure/vision"
)

func newMockSorting() (*SortingService, *SessionService) {
	sessions := NewSessionService(storage.NewMemorySessionRepository())
	limiter := NewRateLimiter(time.Second, time.Minute)
	classifier := NewClassificationService(EngineConfig{}, nil, vision.NewPreprocessor(), limiter, nil)
	detector := NewDetectionService(nil, vision.NewPreprocessor(), vision.NewAnnotator(), limiter, nil)
	return NewSortingService(sessions, classifier, detector, 0), sessions
}

func TestSortingService_ClassifyPhoto(t *testing.T) {
	svc, sessions := newMockSorting()
	ctx := context.Background()
	require.Equal(t, DefaultConfidenceThreshold, svc.Threshold())

	out, err := svc.ClassifyPhoto(ctx, "chat-1", testImage(200, 200))
	require.NoError(t, err)
	require.Equal(t, entity.CategoryRecyclable, out.Result.Category)
	require.Equal(t, "Recycle bin", out.Guidance.Instruction)
	require.False(t, out.LowConfidence)
	require.True(t, out.Recorded)

	// landfill, 75
	out, err = svc.ClassifyPhoto(ctx, "chat-1", testImage(2, 1))
	require.NoError(t, err)
	require.Equal(t, entity.CategoryLandfill, out.Result.Category)

	session, err := sessions.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
	require.Len(t, session.History, 2)
}

func TestSortingService_LowConfidence(t *testing.T) {
	sessions := NewSessionService(storage.NewMemorySessionRepository())
	classifier := NewClassificationService(EngineConfig{}, nil, vision.NewPreprocessor(), nil, nil)
	svc := NewSortingService(sessions, classifier, nil, 80)

	out, err := svc.ClassifyPhoto(context.Background(), "s", testImage(2, 1))
	require.NoError(t, err)
	require.True(t, out.LowConfidence)
}

func TestSortingService_DetectPhoto(t *testing.T) {
	svc, sessions := newMockSorting()
	ctx := context.Background()

	out, err := svc.DetectPhoto(ctx, "chat-2", testImage(30, 10))
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.NotEmpty(t, out.Detections)

	session, err := sessions.Get(ctx, "chat-2")
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
	require.Empty(t, session.History)
}
