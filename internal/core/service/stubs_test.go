package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

// --- In-memory user repository ---

type stubUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Tokens = append([]string(nil), u.Tokens...)
	clone.Avatar = append([]byte(nil), u.Avatar...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := cloneUser(u)
	clone.ID = fmt.Sprintf("user_%d", r.seq)
	now := time.Now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := r.users[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	clone := cloneUser(u)
	clone.UpdatedAt = time.Now().UTC()
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// --- In-memory task repository ---

type stubTaskRepo struct {
	seq        int
	tasks      map[string]*domain.Task
	lastFilter ports.ListTasksFilter
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Image = append([]byte(nil), t.Image...)
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.seq++
	clone := cloneTask(t)
	clone.ID = fmt.Sprintf("task_%d", r.seq)
	now := time.Now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.tasks[clone.ID] = clone
	return cloneTask(clone), nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) FindByOwner(_ context.Context, id, ownerID string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) List(_ context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	r.lastFilter = filter
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		out = append(out, cloneTask(t))
	}
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	existing, ok := r.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return nil, domain.ErrTaskNotFound
	}
	clone := cloneTask(t)
	clone.UpdatedAt = time.Now().UTC()
	r.tasks[clone.ID] = clone
	return cloneTask(clone), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id, ownerID string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return cloneTask(t), nil
}

func (r *stubTaskRepo) DeleteByOwner(_ context.Context, ownerID string) ([]string, error) {
	var ids []string
	for id, t := range r.tasks {
		if t.OwnerID == ownerID {
			delete(r.tasks, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// --- Notifier and cache doubles ---

type stubNotifier struct {
	welcomes      []string
	cancellations []string
}

func (n *stubNotifier) SendWelcome(_ context.Context, email, _ string) {
	n.welcomes = append(n.welcomes, email)
}

func (n *stubNotifier) SendCancellation(_ context.Context, email, _ string) {
	n.cancellations = append(n.cancellations, email)
}

type stubCache struct {
	data          map[string][]byte
	invalidations []string
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, bool) {
	data, ok := c.data[key]
	return data, ok
}

func (c *stubCache) Set(_ context.Context, key string, data []byte) {
	c.data[key] = data
}

func (c *stubCache) Invalidate(_ context.Context, key string) {
	delete(c.data, key)
	c.invalidations = append(c.invalidations, key)
}
