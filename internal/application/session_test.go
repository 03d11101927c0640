package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ecosort/internal/domain/entity"
	"ecosort/internal/infrastructure/storage"
)

func TestSessionService_BeginAndCancel(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.BeginClassify(ctx, "chat-10")
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, session.State)

	session, err = svc.BeginDetect(ctx, "chat-10")
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingDetect, session.State)

	session, err = svc.Cancel(ctx, "chat-10")
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
}

func TestSessionService_SetState(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.SetState(ctx, "chat-20", entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, session.State)

	stored, err := svc.Get(ctx, "chat-20")
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, stored.State)
}

func TestSessionService_RecordClassification(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	history, err := svc.History(ctx, "web")
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Empty(t, history)

	glass := entity.ClassificationResult{Category: entity.CategoryRecyclable, Confidence: 90, Material: "Glass"}
	rec, added, err := svc.RecordClassification(ctx, "web", glass)
	require.NoError(t, err)
	require.True(t, added)
	require.NotEmpty(t, rec.ID)

	again, added, err := svc.RecordClassification(ctx, "web", glass)
	require.NoError(t, err)
	require.False(t, added)
	require.Equal(t, rec.ID, again.ID)

	peel := entity.ClassificationResult{Category: entity.CategoryCompostable, Confidence: 88}
	_, added, err = svc.RecordClassification(ctx, "web", peel)
	require.NoError(t, err)
	require.True(t, added)

	history, err = svc.History(ctx, "web")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, glass, history[0].Result)
	require.Equal(t, peel, history[1].Result)
}

func TestSessionService_CancelKeepsConcurrentHistory(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	const n = 500
	errs := make(chan error, 2*n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			res := entity.ClassificationResult{Category: entity.CategoryLandfill, Confidence: 75, Material: fmt.Sprintf("item-%d", i)}
			_, _, err := svc.RecordClassification(ctx, "web", res)
			errs <- err
		}(i)
		go func() {
			defer wg.Done()
			_, err := svc.Cancel(ctx, "web")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "web")
	require.NoError(t, err)
	require.Len(t, history, n)

	session, err := svc.Get(ctx, "web")
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
}
