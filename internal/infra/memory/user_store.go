package memory

import (
	"context"
	"sync"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

var _ entity.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*entity.User)}
}

func (s *UserStore) Put(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

func (s *UserStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	c := *u
	return &c, nil
}
