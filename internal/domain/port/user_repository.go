package port

import (
	"context"

	"board-finder/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей бота
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя и его черновик регистрации
	Save(ctx context.Context, user *entity.User) error
}
