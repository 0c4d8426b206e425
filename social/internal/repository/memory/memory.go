package memory

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/exmosaul/queteparece/social/internal/repository"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

const tracerID = "social-repository-memory"

// Repository defines a memory user repository. Updates run under the
// repository lock, which stands in for the store's transactional
// read-modify-write primitive.
type Repository struct {
	sync.RWMutex
	data map[string]*model.User
}

// New creates a new memory repository.
func New() *Repository {
	return &Repository{data: map[string]*model.User{}}
}

// Get retrieves a user by id.
func (r *Repository) Get(ctx context.Context, uid string) (*model.User, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	u, ok := r.data[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

// Put stores a user document under its uid, overwriting any existing one.
func (r *Repository) Put(ctx context.Context, user *model.User) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Put")
	defer span.End()

	r.data[user.UID] = user.Clone()
	return nil
}

// Update applies fn to the user document as an atomic read-modify-write. If
// fn returns an error no write happens.
func (r *Repository) Update(ctx context.Context, uid string, fn func(*model.User) error) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Update")
	defer span.End()

	u, ok := r.data[uid]
	if !ok {
		return repository.ErrNotFound
	}
	c := u.Clone()
	if err := fn(c); err != nil {
		return err
	}
	r.data[uid] = c
	return nil
}

// UpdatePair applies fn to two user documents as a single atomic unit.
// Either both writes commit or neither does.
func (r *Repository) UpdatePair(ctx context.Context, uidA, uidB string, fn func(a, b *model.User) error) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdatePair")
	defer span.End()

	a, ok := r.data[uidA]
	if !ok {
		return repository.ErrNotFound
	}
	b, ok := r.data[uidB]
	if !ok {
		return repository.ErrNotFound
	}
	ca, cb := a.Clone(), b.Clone()
	if err := fn(ca, cb); err != nil {
		return err
	}
	r.data[uidA] = ca
	r.data[uidB] = cb
	return nil
}
