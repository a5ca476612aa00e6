package storage

import (
	"context"
	"sync"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей и их черновиков
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает копию пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		user = entity.NewUser(userID, chatID)
		r.users[userID] = user
	}

	copied := *user
	copied.Frames = append([][]byte(nil), user.Frames...)
	return &copied, nil
}

// Save сохраняет состояние пользователя вместе с черновиком
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	stored := *user
	stored.Frames = append([][]byte(nil), user.Frames...)

	r.mu.Lock()
	r.users[user.ID] = &stored
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
