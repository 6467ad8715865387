package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepository struct {
	mu     sync.Mutex
	users  map[int]User
	logs   []OperationLog
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int]User), nextID: 1}
}

func (r *MemoryRepository) Save(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			user := user
			return &user, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []User
	for _, user := range r.users {
		if user.Role == role && user.Status == StatusActive {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryRepository) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	existing.Name = user.Name
	existing.Role = user.Role
	existing.Phone = user.Phone
	existing.Status = user.Status
	r.users[user.ID] = existing
	return nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id int, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil
	}
	user.Password = hashed
	r.users[id] = user
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) LogOperation(ctx context.Context, log OperationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, log)
	return nil
}

// Logs returns a copy of the recorded operations, for tests.
func (r *MemoryRepository) Logs() []OperationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OperationLog(nil), r.logs...)
}
