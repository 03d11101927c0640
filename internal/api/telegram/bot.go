package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "ecosort/internal/application"
	"ecosort/internal/container"
	"ecosort/internal/domain/entity"
	"ecosort/internal/infrastructure/vision"
	"ecosort/internal/logger"
)

const (
	msgStart = `👋 Hi! I'm EcoSort, your waste sorting assistant.

📸 Send me a photo of a waste item and I'll tell you how to dispose of it.

📋 Commands:
/classify — classify one item
/detect — find every item on a photo
/history — your classifications in this session
/status — AI service status
/help — help
/cancel — cancel the current operation`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo of the item (or /detect first for several items)
2️⃣ The AI analyzes the image
3️⃣ You get the category and disposal instructions

💡 For best results:
• Good lighting
• Plain, contrasting background
• One item at a time for /classify
• Show labels and recycling symbols`

	msgAwaitingPhoto   = "📸 Send a photo of the item to classify."
	msgAwaitingDetect  = "📸 Send a photo, I'll find every waste item on it."
	msgCancelled       = "❌ Operation cancelled. Send /classify for a new check."
	msgSendPhoto       = "📸 Please send a photo of a waste item."
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgProcessing      = "⏳ Analyzing the image..."
	msgNoObjects       = "⚠️ No objects detected. Try another angle or better lighting."
	msgProcessingError = "⚠️ Could not process the image. Please try another photo."
	msgEmptyHistory    = "📭 No classifications yet. Send a photo to start."
	msgThrottled       = "⏳ Too many requests. Please wait a moment and try again."

	downloadTimeout = 30 * time.Second
)

// Bot Telegram-бот поверх сервисов сортировки.
type Bot struct {
	api  *tgbotapi.BotAPI
	app  *container.Container
	log  *logger.Logger
	http *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	log.Info("authorized on telegram", "account", api.Self.UserName)

	return &Bot{
		api:  api,
		app:  c,
		log:  log.With("component", "telegram"),
		http: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func sessionKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	id := sessionKey(msg.Chat.ID)
	session, err := b.app.SessionService.Get(ctx, id)
	if err != nil {
		b.log.Error("get session", "session_id", id, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, session)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, session)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.logStateError(b.app.SessionService.Cancel(ctx, session.ID))
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "classify":
		b.logStateError(b.app.SessionService.BeginClassify(ctx, session.ID))
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "detect":
		b.logStateError(b.app.SessionService.BeginDetect(ctx, session.ID))
		b.sendMessage(chatID, msgAwaitingDetect)

	case "history":
		b.sendMessage(chatID, formatHistory(session.History))

	case "status":
		b.sendMessage(chatID, formatStatus(b.app.MockMode(), b.app.Limiter.RemainingQuotaWait()))

	case "cancel":
		b.logStateError(b.app.SessionService.Cancel(ctx, session.ID))
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	chatID := msg.Chat.ID
	detect := session.State == entity.StateAwaitingDetect

	b.sendMessage(chatID, msgProcessing)

	// Берём файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error("download photo", "session_id", session.ID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		b.logStateError(b.app.SessionService.Cancel(ctx, session.ID))
		return
	}

	img, _, err := vision.Decode(bytes.NewReader(data))
	if err != nil {
		b.log.Warn("decode photo", "session_id", session.ID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		b.logStateError(b.app.SessionService.Cancel(ctx, session.ID))
		return
	}

	if detect {
		b.detect(ctx, chatID, session.ID, img)
		return
	}
	b.classify(ctx, chatID, session.ID, img)
}

func (b *Bot) classify(ctx context.Context, chatID int64, sessionID string, img image.Image) {
	out, err := b.app.SortingService.ClassifyPhoto(ctx, sessionID, img)
	if err != nil {
		b.log.Warn("classification failed", "session_id", sessionID, "error", err)
		b.sendMessage(chatID, "⚠️ "+app.UserMessage(err))
		return
	}
	b.sendMessage(chatID, formatClassification(out))
}

func (b *Bot) detect(ctx context.Context, chatID int64, sessionID string, img image.Image) {
	out, err := b.app.SortingService.DetectPhoto(ctx, sessionID, img)
	if err != nil {
		b.log.Error("detection failed", "session_id", sessionID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	switch out.Outcome {
	case app.OutcomeThrottled:
		b.sendMessage(chatID, msgThrottled)
		return
	case app.OutcomeFailed:
		b.sendMessage(chatID, "⚠️ "+out.Message)
		return
	}
	if len(out.Detections) == 0 {
		b.sendMessage(chatID, msgNoObjects)
		return
	}

	data, err := vision.EncodeJPEG(out.Annotated, 85)
	if err != nil {
		b.log.Error("encode annotated photo", "error", err)
		b.sendMessage(chatID, formatDetections(out.Detections))
		return
	}
	b.sendPhoto(chatID, data, formatDetections(out.Detections))
}

func (b *Bot) logStateError(session *entity.Session, err error) {
	if err != nil {
		b.log.Error("change session state", "error", err)
		return
	}
	b.log.Debug("session state changed", "session_id", session.ID, "state", session.State)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, vision.MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendPhoto(chatID int64, data []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "detections.jpg", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error("send photo", "chat_id", chatID, "error", err)
	}
}

func formatClassification(out *app.ClassificationOutput) string {
	res := out.Result
	g := out.Guidance

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", g.Icon, strings.ToUpper(g.Title))
	fmt.Fprintf(&sb, "%s\n\n", g.Description)
	if !res.Category.Known() {
		fmt.Fprintf(&sb, "Reported category: %s\n", res.Category)
	}
	fmt.Fprintf(&sb, "📊 Confidence: %d%%\n", res.Confidence)
	if res.Material != "" {
		fmt.Fprintf(&sb, "🧪 Material: %s\n", res.Material)
	}
	fmt.Fprintf(&sb, "🗂 Where: %s\n", g.Instruction)
	if res.DisposalInstructions != "" {
		fmt.Fprintf(&sb, "\n📋 %s\n", res.DisposalInstructions)
	}
	if res.HasTip() {
		fmt.Fprintf(&sb, "\n💡 %s\n", res.EnvironmentalTip)
	}
	if out.LowConfidence {
		sb.WriteString("\n⚠️ Low confidence. Please verify with your local guidelines.")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatDetections(dets []entity.Detection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Found %d item(s):\n", len(dets))
	for _, d := range dets {
		label := d.Label
		if label == "" {
			label = "Object"
		}
		fmt.Fprintf(&sb, "%s %s (%d%%)\n", d.Category.Guidance().Icon, label, d.Confidence)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistory(history []entity.ClassificationRecord) string {
	if len(history) == 0 {
		return msgEmptyHistory
	}

	counts := make(map[entity.Category]int)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 History (%d):\n", len(history))
	for i, rec := range history {
		g := rec.Result.Category.Guidance()
		counts[rec.Result.Category]++
		material := rec.Result.Material
		if material == "" {
			material = g.Title
		}
		fmt.Fprintf(&sb, "%d. %s %s, %s\n", i+1, g.Icon, material, rec.ClassifiedAt.Format("15:04"))
	}

	sb.WriteString("\n📊 By category:")
	for _, c := range entity.KnownCategories {
		if n := counts[c]; n > 0 {
			fmt.Fprintf(&sb, "\n%s %s: %d", c.Guidance().Icon, c.Guidance().Title, n)
		}
	}
	return sb.String()
}

func formatStatus(mock bool, quotaWait int) string {
	if mock {
		return "🧪 Demo mode: no API key configured, answers are canned examples."
	}
	if quotaWait > 0 {
		return fmt.Sprintf("⏳ AI quota exceeded. Detection resumes in %d s.", quotaWait)
	}
	return "✅ AI service is ready."
}
