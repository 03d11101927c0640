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

func newClassifier(model port.VisionModel, shared bool) (*ClassificationService, *RateLimiter) {
	limiter := NewRateLimiter(time.Millisecond, time.Minute)
	cfg := EngineConfig{APIKey: "key", Model: "test", SharedQuota: shared}
	if model == nil {
		cfg.APIKey = ""
	}
	return NewClassificationService(cfg, model, vision.NewPreprocessor(), limiter, nil), limiter
}

func TestClassify_MockMode(t *testing.T) {
	svc, _ := newClassifier(nil, false)
	require.True(t, svc.MockMode())

	res, err := svc.Classify(context.Background(), testImage(200, 200))
	require.NoError(t, err)
	require.Equal(t, entity.CategoryRecyclable, res.Category)
	require.Equal(t, 92, res.Confidence)
}

func TestClassify_ParsesModelResponse(t *testing.T) {
	model := &fakeModel{text: "```json\n{\"category\":\"hazardous\",\"confidence\":95,\"material\":\"Battery\"}\n```"}
	svc, _ := newClassifier(model, false)

	res, err := svc.Classify(context.Background(), testImage(40, 30))
	require.NoError(t, err)
	require.Equal(t, entity.CategoryHazardous, res.Category)
	require.Equal(t, "Battery", res.Material)
	require.Equal(t, 1, model.Calls())
	require.Equal(t, []string{ClassificationPrompt}, model.prompts)
}

func TestClassify_EmptyResponse(t *testing.T) {
	svc, _ := newClassifier(&fakeModel{text: "  \n"}, false)

	_, err := svc.Classify(context.Background(), testImage(10, 10))
	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "AI returned no classification. Please try again.", UserMessage(err))
}

func TestClassify_ParseErrorIsWrapped(t *testing.T) {
	svc, _ := newClassifier(&fakeModel{text: `{"material":"plastic"}`}, false)

	_, err := svc.Classify(context.Background(), testImage(10, 10))
	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Contains(t, perr.Error(), "missing required field")
	require.Equal(t, "Unable to understand AI response. Please try again.", UserMessage(err))
}

func TestClassify_ModelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{"unavailable", fmt.Errorf("create client: %w", port.ErrModelUnavailable), "AI service is not configured properly"},
		{"generic", errors.New("connection reset"), DefaultUserMessage},
		{"quota, separate pools", fmt.Errorf("gemini: %w", port.ErrQuotaExceeded), DefaultUserMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, limiter := newClassifier(&fakeModel{err: tc.err}, false)

			_, err := svc.Classify(context.Background(), testImage(10, 10))
			var cerr *ClassificationError
			require.ErrorAs(t, err, &cerr)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.msg, UserMessage(err))
			require.False(t, limiter.QuotaExceeded())
		})
	}
}

func TestClassify_SharedQuota(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("gemini: %w", port.ErrQuotaExceeded)}
	svc, limiter := newClassifier(model, true)

	_, err := svc.Classify(context.Background(), testImage(10, 10))
	require.ErrorIs(t, err, port.ErrQuotaExceeded)
	require.True(t, limiter.QuotaExceeded())
	require.Contains(t, UserMessage(err), "AI quota exceeded")

	_, err = svc.Classify(context.Background(), testImage(10, 10))
	require.ErrorIs(t, err, port.ErrQuotaExceeded)
	require.Equal(t, 1, model.Calls())
}

func TestClassify_NilImage(t *testing.T) {
	svc, _ := newClassifier(nil, false)
	_, err := svc.Classify(context.Background(), nil)
	require.Error(t, err)
}
