package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ecosort/internal/domain/port"
	"ecosort/internal/logger"
)

// DefaultModel модель по умолчанию
const DefaultModel = "gemini-2.5-flash"

// Client адаптер Gemini для port.VisionModel.
// Клиент SDK создаётся один раз при первом запросе и переиспользуется;
// GenerateContent безопасен для одновременных вызовов.
type Client struct {
	apiKey string
	model  string
	log    *logger.Logger

	mu     sync.Mutex
	client *genai.Client
	gm     *genai.GenerativeModel
}

var _ port.VisionModel = (*Client)(nil)

// New создаёт адаптер; соединение открывается лениво.
func New(apiKey, model string, log *logger.Logger) *Client {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		apiKey: strings.TrimSpace(apiKey),
		model:  model,
		log:    log.With("component", "gemini", "model", model),
	}
}

// Model идентификатор модели
func (c *Client) Model() string { return c.model }

// Generate отправляет промпт и JPEG одним запросом и возвращает текст первого кандидата.
// Превышение квоты оборачивается в port.ErrQuotaExceeded, сбой создания клиента в port.ErrModelUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string, jpegData []byte) (string, error) {
	m, err := c.generativeModel()
	if err != nil {
		return "", err
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt), genai.ImageData("jpeg", jpegData))
	if err != nil {
		return "", classifyError(err)
	}

	text := responseText(resp)
	c.log.Debug("model response", "chars", len(text), "preview", preview(text, 200))
	return text, nil
}

// Close закрывает клиент SDK, если он был создан
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client, c.gm = nil, nil
	return err
}

func (c *Client) generativeModel() (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gm != nil {
		return c.gm, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty: %w", port.ErrModelUnavailable)
	}

	// клиент живёт дольше любого запроса, поэтому не привязан к его контексту
	cl, err := genai.NewClient(context.Background(), option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w: %w", port.ErrModelUnavailable, err)
	}

	gm := cl.GenerativeModel(c.model)
	gm.SetTemperature(0.1)
	gm.SetTopP(0.95)
	gm.SetTopK(40)
	gm.SetMaxOutputTokens(1024)

	c.client, c.gm = cl, gm
	c.log.Info("gemini model initialized")
	return gm, nil
}

// classifyError различает превышение квоты по коду ответа, а не по тексту ошибки.
func classifyError(err error) error {
	if isQuotaError(err) {
		return fmt.Errorf("gemini: %w: %w", port.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}

func isQuotaError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}

	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		if aerr.HTTPCode() == http.StatusTooManyRequests {
			return true
		}
		if st := aerr.GRPCStatus(); st != nil && st.Code() == codes.ResourceExhausted {
			return true
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}

// responseText склеивает текстовые части первого кандидата.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
