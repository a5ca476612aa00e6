package app

import (
	"context"
	"errors"

	"board-finder/internal/domain/entity"
)

// EnrollmentService ведёт регистрацию образца через диалог:
// кадры копятся в черновике пользователя, затем сохраняются одним вызовом.
type EnrollmentService struct {
	users   *UserService
	catalog *CatalogService
}

// NewEnrollmentService создаёт сервис регистрации через диалог
func NewEnrollmentService(users *UserService, catalog *CatalogService) *EnrollmentService {
	return &EnrollmentService{users: users, catalog: catalog}
}

// Save регистрирует собранные кадры под указанным артикулом.
// При ошибке ввода (пустой артикул) или временном отказе хранилища черновик
// сохраняется для повтора.
func (s *EnrollmentService) Save(ctx context.Context, userID, chatID int64, shortCode, description string) (entity.ItemSummary, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return entity.ItemSummary{}, err
	}
	if !user.IsRegistering() {
		return entity.ItemSummary{}, ErrNotRegistering
	}

	frames := user.TakeFrames()
	user.SetState(entity.StateProcessing)
	if err := s.users.repo.Save(ctx, user); err != nil {
		return entity.ItemSummary{}, err
	}

	item, regErr := s.catalog.Register(ctx, frames, shortCode, description)
	if regErr != nil && (errors.Is(regErr, entity.ErrValidation) || entity.IsRetryable(regErr)) {
		// образец не сохранён: возвращаем кадры в черновик
		user.Frames = frames
		user.SetState(entity.StateAwaitingFrames)
	} else {
		user.SetState(entity.StateMainMenu)
	}
	if err := s.users.repo.Save(ctx, user); err != nil {
		return entity.ItemSummary{}, err
	}

	return item, regErr
}
