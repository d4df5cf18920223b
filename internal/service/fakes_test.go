package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"dadsadvice/internal/database"
	"dadsadvice/internal/models"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *fakeUserStore) GetFatherByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil || u == nil || !u.IsFather() {
		return nil, err
	}
	return u, nil
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return nil, fmt.Errorf("user %s: %w", user.ID, database.ErrDuplicateKey)
	}
	u := *user
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return &u, nil
}

type fakeAdviceStore struct {
	mu      sync.Mutex
	advices map[string]models.Advice
	seq     int
	// dropWrites makes every write report that no row was touched
	dropWrites bool
}

func newFakeAdviceStore() *fakeAdviceStore {
	return &fakeAdviceStore{advices: map[string]models.Advice{}}
}

func (s *fakeAdviceStore) CreateAdvice(ctx context.Context, advice *models.Advice) (*models.Advice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropWrites {
		return nil, nil
	}
	s.seq++
	a := *advice
	a.CreatedAt = time.Unix(int64(s.seq), 0).UTC()
	a.UpdatedAt = a.CreatedAt
	s.advices[a.ID] = a
	return &a, nil
}

func (s *fakeAdviceStore) GetAdviceByID(ctx context.Context, id string) (*models.Advice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.advices[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *fakeAdviceStore) ListAdvices(ctx context.Context, authorID string, filter models.AdviceFilter) ([]models.Advice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Advice{}
	for _, a := range s.advices {
		if a.AuthorID != authorID {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.TargetAge != nil && a.TargetAge != *filter.TargetAge {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeAdviceStore) UpdateAdvice(ctx context.Context, advice *models.Advice) (*models.Advice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.advices[advice.ID]; !ok || s.dropWrites {
		return nil, nil
	}
	a := *advice
	s.advices[a.ID] = a
	return &a, nil
}

func (s *fakeAdviceStore) DeleteAdvice(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.advices[id]; !ok || s.dropWrites {
		return false, nil
	}
	delete(s.advices, id)
	return true, nil
}

func (s *fakeAdviceStore) MarkRead(ctx context.Context, id string) (bool, error) {
	return s.update(id, func(a *models.Advice) { a.IsRead = true })
}

func (s *fakeAdviceStore) SetFavorite(ctx context.Context, id string, favorite bool) (bool, error) {
	return s.update(id, func(a *models.Advice) { a.IsFavorite = favorite })
}

func (s *fakeAdviceStore) update(id string, fn func(*models.Advice)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.advices[id]
	if !ok || s.dropWrites {
		return false, nil
	}
	fn(&a)
	s.advices[id] = a
	return true, nil
}

func (s *fakeAdviceStore) FatherStats(ctx context.Context, authorID string) (*models.FatherStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.FatherStats{}
	for _, a := range s.advices {
		if a.AuthorID != authorID {
			continue
		}
		stats.Total++
		if a.IsRead {
			stats.Read++
		}
	}
	stats.Unread = stats.Total - stats.Read
	return stats, nil
}

func (s *fakeAdviceStore) ChildStats(ctx context.Context, authorID string, age int) (*models.ChildStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.ChildStats{CurrentAge: age}
	for _, a := range s.advices {
		if a.AuthorID != authorID {
			continue
		}
		if a.TargetAge <= age {
			stats.Available++
		} else {
			stats.Future++
		}
		if a.IsFavorite {
			stats.Favorite++
		}
	}
	return stats, nil
}

type fakeObjectStore struct {
	keys []string
	err  error
}

func (s *fakeObjectStore) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s.err != nil {
		return s.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.keys = append(s.keys, key)
	return nil
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) NotifyChildJoined(ctx context.Context, father, child *models.User) error {
	n.calls = append(n.calls, father.ID+"<-"+child.ID)
	return n.err
}
