package app

import (
	"context"
	"errors"
	"fmt"

	"board-finder/internal/domain/entity"
	"board-finder/internal/domain/port"
)

// MaxDraftFrames сколько кадров можно собрать для одной регистрации
const MaxDraftFrames = 30

var (
	// ErrNotRegistering кадр пришёл вне сценария регистрации
	ErrNotRegistering = errors.New("registration is not started")
	// ErrTooManyFrames черновик регистрации переполнен
	ErrTooManyFrames = fmt.Errorf("too many frames (max %d)", MaxDraftFrames)
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginRegistration начинает сбор кадров с пустого черновика.
func (s *UserService) BeginRegistration(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.TakeFrames()
	user.SetState(entity.StateAwaitingFrames)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AddFrame кладёт кадр в черновик и возвращает их количество.
func (s *UserService) AddFrame(ctx context.Context, userID, chatID int64, frame []byte) (int, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return 0, err
	}
	if !user.IsRegistering() {
		return 0, ErrNotRegistering
	}
	if len(user.Frames) >= MaxDraftFrames {
		return len(user.Frames), ErrTooManyFrames
	}

	count := user.AddFrame(frame)
	if err := s.repo.Save(ctx, user); err != nil {
		return 0, err
	}
	return count, nil
}

// Cancel сбрасывает черновик и возвращает пользователя в главное меню.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.TakeFrames()
	user.SetState(entity.StateMainMenu)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
