package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu       UserState = "main_menu"       // В главном меню, фото = поиск
	StateAwaitingFrames UserState = "awaiting_frames" // Сбор кадров для регистрации
	StateProcessing     UserState = "processing"      // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
	Frames [][]byte  // Кадры, собранные для регистрации
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// IsRegistering сообщает, собирает ли пользователь кадры.
func (u *User) IsRegistering() bool {
	return u.State == StateAwaitingFrames
}

// AddFrame добавляет кадр к черновику регистрации и возвращает число кадров
func (u *User) AddFrame(frame []byte) int {
	u.Frames = append(u.Frames, frame)
	return len(u.Frames)
}

// TakeFrames забирает собранные кадры и очищает черновик
func (u *User) TakeFrames() [][]byte {
	frames := u.Frames
	u.Frames = nil
	return frames
}
