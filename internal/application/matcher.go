package app

import "board-finder/internal/domain/entity"

// FindBestMatch перебирает все отпечатки всех образцов и возвращает глобально
// ближайший. При равных расстояниях побеждает встреченный первым (порядок
// перебора задаёт хранилище). ok = false для пустого набора кандидатов.
func FindBestMatch(query entity.Fingerprint, candidates []entity.Candidate) (best entity.Candidate, distance int, ok bool) {
	for _, c := range candidates {
		d := query.Distance(c.Fingerprint)
		if !ok || d < distance {
			best, distance, ok = c, d, true
		}
	}
	return best, distance, ok
}

// Matcher применяет порог к лучшему кандидату
type Matcher struct {
	Threshold int
}

// NewMatcher создаёт матчер с порогом выбранной схемы регистрации
func NewMatcher(policy entity.Policy) Matcher {
	return Matcher{Threshold: policy.Threshold()}
}

// Match возвращает совпадение, только если расстояние не больше порога.
func (m Matcher) Match(query entity.Fingerprint, candidates []entity.Candidate) (*entity.MatchResult, bool) {
	best, distance, ok := FindBestMatch(query, candidates)
	if !ok || distance > m.Threshold {
		return nil, false
	}
	return &entity.MatchResult{
		ItemID:      best.Item.ID,
		ShortCode:   best.Item.ShortCode,
		Description: best.Item.Description,
		ImageRef:    best.Item.ImageRef,
		Distance:    distance,
	}, true
}
