// internal/suggestions/service.go

package suggestions

import (
	"context"
	"errors"
)

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrNotOwner           = errors.New("suggestion belongs to another user")
)

type CreateSuggestionDTO struct {
	Name       string            `json:"name" validate:"required,min=1,max=200"`
	Category   string            `json:"category" validate:"required,min=1,max=100"`
	Attributes map[string]string `json:"attributes,omitempty" validate:"omitempty,max=20"`
}

type UpdateSuggestionDTO struct {
	Name       *string           `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category   *string           `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Attributes map[string]string `json:"attributes,omitempty" validate:"omitempty,max=20"`
}

type Service interface {
	CreateSuggestion(ctx context.Context, userID int64, dto *CreateSuggestionDTO) (*Suggestion, error)
	GetSuggestion(ctx context.Context, id int64) (*Suggestion, error)
	ListSuggestions(ctx context.Context, category string, limit int) ([]*Suggestion, error)
	UpdateSuggestion(ctx context.Context, userID, id int64, dto *UpdateSuggestionDTO) (*Suggestion, error)
	DeleteSuggestion(ctx context.Context, userID, id int64) error
}

type service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) CreateSuggestion(ctx context.Context, userID int64, dto *CreateSuggestionDTO) (*Suggestion, error) {
	suggestion := &Suggestion{
		Name:       dto.Name,
		Category:   dto.Category,
		Attributes: dto.Attributes,
		CreatedBy:  userID,
	}
	if suggestion.Attributes == nil {
		suggestion.Attributes = map[string]string{}
	}

	if err := s.repo.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return suggestion, nil
}

func (s *service) GetSuggestion(ctx context.Context, id int64) (*Suggestion, error) {
	return s.repo.GetSuggestion(ctx, id)
}

func (s *service) ListSuggestions(ctx context.Context, category string, limit int) ([]*Suggestion, error) {
	// Cached listings ignore the limit; trimming afterwards keeps the key
	// space to one entry per category.
	if cached, ok := s.cache.GetList(ctx, category); ok {
		return trim(cached, limit), nil
	}

	suggestions, err := s.repo.ListSuggestions(ctx, category, 0)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(ctx, category, suggestions)
	return trim(suggestions, limit), nil
}

func (s *service) UpdateSuggestion(ctx context.Context, userID, id int64, dto *UpdateSuggestionDTO) (*Suggestion, error) {
	suggestion, err := s.ownedSuggestion(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		suggestion.Name = *dto.Name
	}
	if dto.Category != nil {
		suggestion.Category = *dto.Category
	}
	if dto.Attributes != nil {
		suggestion.Attributes = dto.Attributes
	}

	if err := s.repo.UpdateSuggestion(ctx, suggestion); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return suggestion, nil
}

func (s *service) DeleteSuggestion(ctx context.Context, userID, id int64) error {
	if _, err := s.ownedSuggestion(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteSuggestion(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

func (s *service) ownedSuggestion(ctx context.Context, id, userID int64) (*Suggestion, error) {
	suggestion, err := s.repo.GetSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if suggestion.CreatedBy != userID {
		return nil, ErrNotOwner
	}
	return suggestion, nil
}

func trim(suggestions []*Suggestion, limit int) []*Suggestion {
	if limit > 0 && len(suggestions) > limit {
		return suggestions[:limit]
	}
	return suggestions
}
