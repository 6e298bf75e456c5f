package service

import (
	"context"
	"strings"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// StaticUsers — пользователи консоли из конфигурации
type StaticUsers struct {
	byName map[string]domain.User
}

func NewStaticUsers(users []domain.User) *StaticUsers {
	m := make(map[string]domain.User, len(users))
	for _, u := range users {
		m[strings.ToLower(u.Username)] = u
	}
	return &StaticUsers{byName: m}
}

func (s *StaticUsers) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return &u, nil
}
