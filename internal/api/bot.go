package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"board-finder/internal/container"
	"board-finder/internal/domain/entity"
)

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	slog.Info("Authorized on account", "username", api.Self.UserName)

	return &Bot{
		api: api,
		app: app,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
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
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		slog.Error("Error getting user", "user", msg.From.ID, "err", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if fileID, ok := imageFileID(msg); ok {
		if user.IsRegistering() {
			b.handleFrame(ctx, msg, fileID)
		} else {
			b.handleQuery(ctx, msg, fileID)
		}
		return
	}

	if msg.Video != nil && user.IsRegistering() {
		b.handleVideo(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.app.UserService.Cancel(ctx, userID, chatID); err != nil {
			slog.Error("Error resetting user", "user", userID, "err", err)
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "register":
		if _, err := b.app.UserService.BeginRegistration(ctx, userID, chatID); err != nil {
			b.replyError(chatID, "begin registration", err)
			return
		}
		b.sendMessage(chatID, msgRegisterStarted)

	case "save":
		b.handleSave(ctx, msg, user)

	case "cancel":
		if _, err := b.app.UserService.Cancel(ctx, userID, chatID); err != nil {
			b.replyError(chatID, "cancel", err)
			return
		}
		b.sendMessage(chatID, msgCancelled)

	case "list":
		items, err := b.app.CatalogService.List(ctx)
		if err != nil {
			b.replyError(chatID, "list", err)
			return
		}
		b.sendMessage(chatID, formatList(items))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handleSave(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	if !user.IsRegistering() {
		b.sendMessage(chatID, msgNotRegistering)
		return
	}
	if len(user.Frames) == 0 {
		b.sendMessage(chatID, msgNoFrames)
		return
	}
	shortCode, description, err := parseSaveArgs(msg.CommandArguments())
	if err != nil {
		b.sendMessage(chatID, msgSaveUsage)
		return
	}

	b.sendMessage(chatID, msgProcessing)
	item, err := b.app.EnrollmentService.Save(ctx, msg.From.ID, chatID, shortCode, description)
	if err != nil {
		b.replyError(chatID, "save", err)
		return
	}
	b.sendMessage(chatID, itemSaved(item))
}

// handleFrame кладёт фото в черновик регистрации
func (b *Bot) handleFrame(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.replyError(msg.Chat.ID, "download frame", err)
		return
	}
	count, err := b.app.UserService.AddFrame(ctx, msg.From.ID, msg.Chat.ID, data)
	if err != nil {
		b.replyError(msg.Chat.ID, "add frame", err)
		return
	}
	b.sendMessage(msg.Chat.ID, frameAccepted(count))
}

// handleVideo нарезает видео на кадры и кладёт их в черновик
func (b *Bot) handleVideo(ctx context.Context, msg *tgbotapi.Message) {
	if b.app.Sampler == nil {
		b.sendMessage(msg.Chat.ID, msgVideoDisabled)
		return
	}
	b.sendMessage(msg.Chat.ID, msgProcessing)

	data, err := b.downloadFile(ctx, msg.Video.FileID)
	if err != nil {
		b.replyError(msg.Chat.ID, "download video", err)
		return
	}
	frames, err := b.app.Sampler.SampleFrames(ctx, data, b.app.VideoFrames)
	if err != nil {
		slog.Warn("Video sampling failed", "user", msg.From.ID, "err", err)
		b.sendMessage(msg.Chat.ID, msgBadImage)
		return
	}

	count := 0
	for _, frame := range frames {
		count, err = b.app.UserService.AddFrame(ctx, msg.From.ID, msg.Chat.ID, frame)
		if err != nil {
			b.replyError(msg.Chat.ID, "add frame", err)
			return
		}
	}
	b.sendMessage(msg.Chat.ID, frameAccepted(count))
}

// handleQuery ищет фото в каталоге
func (b *Bot) handleQuery(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID
	b.sendMessage(chatID, msgProcessing)

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.replyError(chatID, "download photo", err)
		return
	}

	match, err := b.app.CatalogService.Query(ctx, data)
	if err != nil {
		b.replyError(chatID, "query", err)
		return
	}
	if match == nil {
		b.sendMessage(chatID, msgNotFound)
		return
	}

	image, err := b.app.CatalogService.Image(ctx, match.ImageRef)
	if err != nil {
		slog.Warn("Stored image unavailable", "ref", match.ImageRef, "err", err)
		b.sendMessage(chatID, matchCaption(match))
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: match.ImageRef, Bytes: image})
	photo.Caption = matchCaption(match)
	if _, err := b.api.Send(photo); err != nil {
		slog.Error("Error sending photo", "chat", chatID, "err", err)
	}
}

// imageFileID возвращает файл фото максимального размера или изображение,
// отправленное документом
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
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
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) replyError(chatID int64, op string, err error) {
	level := slog.LevelWarn
	if entity.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded) {
		level = slog.LevelError
	}
	slog.Log(context.Background(), level, "Request failed", "op", op, "chat", chatID, "err", err)
	b.sendMessage(chatID, errorReply(err))
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Error sending message", "chat", chatID, "err", err)
	}
}
