package telegram

import (
	"errors"
	"fmt"
	"strings"

	app "board-finder/internal/application"
	"board-finder/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я помогаю найти плиту в каталоге по фотографии.

📸 Отправьте фото образца, и я найду его артикул.

📋 Команды:
/register — зарегистрировать новый образец
/list — список образцов
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

🔎 Поиск: просто отправьте фото плиты.

🆕 Регистрация:
1️⃣ /register
2️⃣ Отправьте несколько фото образца с разных ракурсов (или короткое видео)
3️⃣ /save АРТИКУЛ | описание

💡 Рекомендации:
• Снимайте при ровном освещении, без бликов
• Плита должна занимать весь кадр
• Фото должно быть чётким`

	msgRegisterStarted = "📸 Отправляйте фото образца. Когда закончите: /save АРТИКУЛ | описание"
	msgCancelled       = "❌ Операция отменена."
	msgSendPhoto       = "📸 Отправьте фото плиты для поиска или /register для регистрации."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgNotFound        = "🤷 Образец не найден в каталоге."
	msgEmptyCatalog    = "📭 Каталог пуст."
	msgSaveUsage       = "✍️ Формат: /save АРТИКУЛ | описание"
	msgNotRegistering  = "ℹ️ Сначала начните регистрацию: /register"
	msgNoFrames        = "📸 Нет ни одного кадра. Отправьте фото образца."
	msgTooManyFrames   = "⚠️ Достаточно кадров. Сохраните образец: /save АРТИКУЛ | описание"
	msgVideoDisabled   = "🎞 Видео не поддерживается в этой сборке. Отправьте фото."
	msgBadImage        = "⚠️ Не удалось прочитать изображение. Попробуйте сделать другое фото."
	msgNoUsableFrames  = "⚠️ Ни один кадр не удалось обработать. Начните заново: /register"
	msgTryLater        = "⏳ Каталог временно недоступен. Попробуйте позже."
	msgProcessingError = "⚠️ Не удалось обработать запрос."
)

// parseSaveArgs разбирает «АРТИКУЛ | описание»
func parseSaveArgs(args string) (shortCode, description string, err error) {
	code, desc, ok := strings.Cut(args, "|")
	if !ok {
		return "", "", errors.New("missing separator")
	}
	code, desc = strings.TrimSpace(code), strings.TrimSpace(desc)
	if code == "" || desc == "" {
		return "", "", errors.New("empty field")
	}
	return code, desc, nil
}

func frameAccepted(count int) string {
	return fmt.Sprintf("✅ Кадр %d принят.", count)
}

func itemSaved(item entity.ItemSummary) string {
	return fmt.Sprintf("💾 Образец сохранён: %s — %s (кадров: %d, ID %d)",
		item.ShortCode, item.Description, item.FingerprintCount, item.ID)
}

func matchCaption(m *entity.MatchResult) string {
	return fmt.Sprintf("✅ %s\n%s\nРасстояние: %d", m.ShortCode, m.Description, m.Distance)
}

func formatList(items []entity.ItemSummary) string {
	if len(items) == 0 {
		return msgEmptyCatalog
	}
	var sb strings.Builder
	sb.WriteString("📋 Образцы:\n")
	for _, it := range items {
		fmt.Fprintf(&sb, "• %s — %s (%s)\n", it.ShortCode, it.Description, it.CreatedAt.Format("2006-01-02"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// errorReply выбирает ответ пользователю по виду ошибки
func errorReply(err error) string {
	switch {
	case errors.Is(err, entity.ErrDecode):
		return msgBadImage
	case errors.Is(err, entity.ErrEmptyFingerprintSet):
		return msgNoUsableFrames
	case errors.Is(err, entity.ErrValidation):
		return msgSaveUsage
	case errors.Is(err, app.ErrNotRegistering):
		return msgNotRegistering
	case errors.Is(err, app.ErrTooManyFrames):
		return msgTooManyFrames
	case entity.IsRetryable(err):
		return msgTryLater
	default:
		return msgProcessingError
	}
}
