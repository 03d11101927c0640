package rest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "ecosort/internal/application"
	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
	"ecosort/internal/infrastructure/vision"
)

const (
	sessionHeader = "X-Session-ID"
	jpegQuality   = 85
)

type guidanceResponse struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func newGuidanceResponse(g entity.Guidance) guidanceResponse {
	return guidanceResponse{
		Icon:        g.Icon,
		Title:       g.Title,
		Instruction: g.Instruction,
		Description: g.Description,
		Color:       fmt.Sprintf("#%02x%02x%02x", g.Color.R, g.Color.G, g.Color.B),
	}
}

type classifyResponse struct {
	SessionID     string                      `json:"session_id"`
	Result        entity.ClassificationResult `json:"result"`
	Guidance      guidanceResponse            `json:"guidance"`
	LowConfidence bool                        `json:"low_confidence"`
	Threshold     int                         `json:"confidence_threshold"`
	RecordID      string                      `json:"record_id"`
	Recorded      bool                        `json:"recorded"`
}

type detectResponse struct {
	Outcome    app.Outcome        `json:"outcome"`
	Detections []entity.Detection `json:"detections"`
	Message    string             `json:"message,omitempty"`
	Image      string             `json:"image,omitempty"` // base64 JPEG с рамками
}

type intervalRequest struct {
	Seconds *float64 `json:"seconds" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mock_mode":            s.app.MockMode(),
		"model":                s.opts.Model,
		"shared_quota":         s.app.Engine.SharedQuota,
		"quota_exceeded":       s.app.Limiter.QuotaExceeded(),
		"quota_wait_seconds":   s.app.Limiter.RemainingQuotaWait(),
		"detection_interval":   s.app.FrameProcessor.Interval().Seconds(),
		"confidence_threshold": s.app.SortingService.Threshold(),
	})
}

func (s *Server) handleQuota(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"exceeded":     s.app.Limiter.QuotaExceeded(),
		"wait_seconds": s.app.Limiter.RemainingQuotaWait(),
	})
}

func (s *Server) handleClassify(c *gin.Context) {
	img, ok := s.readImage(c, "image")
	if !ok {
		return
	}
	sessionID := sessionID(c)

	out, err := s.app.SortingService.ClassifyPhoto(c.Request.Context(), sessionID, img)
	if err != nil {
		s.log.Warn("classification request failed", "session_id", sessionID, "error", err)
		c.JSON(classificationStatus(err), gin.H{"error": app.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, classifyResponse{
		SessionID:     sessionID,
		Result:        *out.Result,
		Guidance:      newGuidanceResponse(out.Guidance),
		LowConfidence: out.LowConfidence,
		Threshold:     s.app.SortingService.Threshold(),
		RecordID:      out.Record.ID,
		Recorded:      out.Recorded,
	})
}

func (s *Server) handleDetect(c *gin.Context) {
	img, ok := s.readImage(c, "image")
	if !ok {
		return
	}
	sessionID := sessionID(c)

	out, err := s.app.SortingService.DetectPhoto(c.Request.Context(), sessionID, img)
	if err != nil {
		s.log.Error("detection request failed", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Detection failed"})
		return
	}

	resp := detectResponse{
		Outcome:    out.Outcome,
		Detections: out.Detections,
		Message:    out.Message,
	}
	if out.Annotated != nil {
		data, err := vision.EncodeJPEG(out.Annotated, jpegQuality)
		if err != nil {
			s.log.Error("encode annotated image", "error", err)
		} else {
			resp.Image = base64.StdEncoding.EncodeToString(data)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFrame(c *gin.Context) {
	img, ok := s.readImage(c, "frame")
	if !ok {
		return
	}

	out := s.app.FrameProcessor.Process(c.Request.Context(), img)
	s.writeJPEG(c, out)
}

func (s *Server) handleLatestFrame(c *gin.Context) {
	frame := s.app.FrameProcessor.LatestFrame()
	if frame == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No frames received yet"})
		return
	}
	s.writeJPEG(c, frame)
}

func (s *Server) handleDetectionState(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.DetectionState.Snapshot())
}

func (s *Server) handleSetInterval(c *gin.Context) {
	var req intervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	d := time.Duration(*req.Seconds * float64(time.Second))
	if d < app.MinDetectionInterval || d > app.MaxDetectionInterval {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be between 1 and 10"})
		return
	}

	applied := s.app.FrameProcessor.SetInterval(d)
	s.log.Info("detection interval changed", "interval", applied)
	c.JSON(http.StatusOK, gin.H{"seconds": applied.Seconds()})
}

func (s *Server) handleHistory(c *gin.Context) {
	id := c.Param("id")
	history, err := s.app.SessionService.History(c.Request.Context(), id)
	if err != nil {
		s.log.Error("load history", "session_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"count":      len(history),
		"history":    history,
	})
}

// readImage читает и декодирует файл из multipart-формы; при ошибке сам отвечает клиенту.
func (s *Server) readImage(c *gin.Context, field string) (image.Image, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("multipart field %q is required", field)})
		return nil, false
	}
	if fh.Size > vision.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return nil, false
	}
	defer f.Close()

	img, _, err := vision.Decode(f)
	if err != nil {
		if errors.Is(err, vision.ErrUnsupportedImage) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Supported formats: JPEG, PNG, GIF, WebP"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot decode image"})
		return nil, false
	}
	return img, true
}

func (s *Server) writeJPEG(c *gin.Context, img image.Image) {
	data, err := vision.EncodeJPEG(img, jpegQuality)
	if err != nil {
		s.log.Error("encode frame", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode frame"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

// sessionID берёт сессию из заголовка или создаёт новую и возвращает её клиенту.
func sessionID(c *gin.Context) string {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(sessionHeader, id)
	return id
}

func classificationStatus(err error) int {
	var perr *app.ParseError
	switch {
	case errors.Is(err, port.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, port.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &perr):
		return http.StatusBadGateway
	}
	var cerr *app.ClassificationError
	if errors.As(err, &cerr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
