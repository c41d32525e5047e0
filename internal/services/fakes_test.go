package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tjgf2022/logkeeper-roles-hub/internal/store"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	users  []types.User
	nextID int
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{nextID: 1}
	for _, user := range users {
		if user.ID == 0 {
			user.ID = repo.nextID
		}
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
		repo.users = append(repo.users, user)
	}
	return repo
}

func (r *fakeUserRepo) List(context.Context) ([]types.User, error) {
	out := make([]types.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users = append(r.users, user)
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			user.PasswordHash = r.users[i].PasswordHash
			user.UpdatedAt = time.Now()
			r.users[i] = user
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int, role types.Role) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].Role = role
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int, at time.Time) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].LastLoginAt = at
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeLogRepo is an in-memory WorkLogRepository for tests.
type fakeLogRepo struct {
	logs   []types.WorkLog
	nextID int
}

func newFakeLogRepo(logs ...types.WorkLog) *fakeLogRepo {
	repo := &fakeLogRepo{nextID: 1}
	for _, log := range logs {
		if log.ID == 0 {
			log.ID = repo.nextID
		}
		if log.ID >= repo.nextID {
			repo.nextID = log.ID + 1
		}
		repo.logs = append(repo.logs, log)
	}
	return repo
}

func (r *fakeLogRepo) List(context.Context) ([]types.WorkLog, error) {
	out := make([]types.WorkLog, len(r.logs))
	copy(out, r.logs)
	return out, nil
}

func (r *fakeLogRepo) Get(_ context.Context, id int) (types.WorkLog, error) {
	for _, log := range r.logs {
		if log.ID == id {
			return log, nil
		}
	}
	return types.WorkLog{}, store.ErrNotFound
}

func (r *fakeLogRepo) Create(_ context.Context, log types.WorkLog) (types.WorkLog, error) {
	log.ID = r.nextID
	r.nextID++
	now := time.Now()
	log.CreatedAt = now
	log.UpdatedAt = now
	r.logs = append(r.logs, log)
	return log, nil
}

func (r *fakeLogRepo) Update(_ context.Context, log types.WorkLog) (types.WorkLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == log.ID {
			log.UpdatedAt = time.Now()
			r.logs[i] = log
			return log, nil
		}
	}
	return types.WorkLog{}, store.ErrNotFound
}

func (r *fakeLogRepo) Delete(_ context.Context, id int) error {
	for i := range r.logs {
		if r.logs[i].ID == id {
			r.logs = append(r.logs[:i], r.logs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeGateway is a scriptable IdentityGateway for provisioner tests.
type fakeGateway struct {
	rejected map[string]string
	signedUp []string
}

func (g *fakeGateway) SignIn(context.Context, string, string) (types.Session, string, error) {
	return types.Session{}, "", ErrInvalidCredentials
}

func (g *fakeGateway) SignUp(_ context.Context, email, _ string, meta SignUpMeta) (types.Session, error) {
	if message, ok := g.rejected[email]; ok {
		return types.Session{}, fmt.Errorf("%w: %s", ErrAlreadyExists, message)
	}
	g.signedUp = append(g.signedUp, email)
	return types.Session{DisplayName: meta.Username, Role: meta.Role}, nil
}

func (g *fakeGateway) SessionFromToken(string) (types.Session, error) {
	return types.Session{}, ErrUnauthorized
}
