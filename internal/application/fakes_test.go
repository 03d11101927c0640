package app

import (
	"context"
	"image"
	"image/color"
	"sync"

	"ecosort/internal/domain/entity"
)

// fakeModel отвечает заранее заданным текстом или ошибкой.
type fakeModel struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	prompts []string
}

func (m *fakeModel) Generate(ctx context.Context, prompt string, jpegData []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	return m.text, m.err
}

func (m *fakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeState запоминает все записи в общее состояние.
type fakeState struct {
	mu      sync.Mutex
	updates []entity.DetectionSnapshot
}

func (s *fakeState) Update(detections []entity.Detection, status entity.DetectionStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, entity.DetectionSnapshot{
		Detections:   entity.CloneDetections(detections),
		Status:       status,
		ErrorMessage: errMsg,
	})
}

func (s *fakeState) Statuses() []entity.DetectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.DetectionStatus, 0, len(s.updates))
	for _, u := range s.updates {
		out = append(out, u.Status)
	}
	return out
}

func (s *fakeState) Last() entity.DetectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[len(s.updates)-1]
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}
	return img
}
