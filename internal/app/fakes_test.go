package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"gopherai-insight/internal/ai"
	"gopherai-insight/internal/model"
)

var errStoreDown = errors.New("store down")

type fakeDatasetStore struct {
	mu        sync.Mutex
	datasets  map[string]*model.Dataset
	createErr error
	saveErr   error
}

func newFakeDatasetStore() *fakeDatasetStore {
	return &fakeDatasetStore{datasets: make(map[string]*model.Dataset)}
}

func (f *fakeDatasetStore) Create(_ context.Context, dataset *model.Dataset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *dataset
	f.datasets[dataset.ID] = &cp
	return nil
}

func (f *fakeDatasetStore) ListByUserID(_ context.Context, userID uint) ([]model.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Dataset
	for _, d := range f.datasets {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDatasetStore) GetByIDAndUserID(_ context.Context, id string, userID uint) (*model.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.datasets[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDatasetStore) Save(_ context.Context, dataset *model.Dataset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *dataset
	f.datasets[dataset.ID] = &cp
	return nil
}

func (f *fakeDatasetStore) DeleteByIDAndUserID(_ context.Context, id string, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.datasets[id]; ok && d.UserID == userID {
		delete(f.datasets, id)
	}
	return nil
}

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(_ context.Context, path, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[path] = data
	return path, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []model.ChatMessage
	// failAfter makes every publish after the first failAfter calls fail.
	failAfter int
}

func (f *fakePublisher) Publish(_ context.Context, msg model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && len(f.messages) >= f.failAfter {
		return errStoreDown
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) snapshot() []model.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ChatMessage(nil), f.messages...)
}

func (f *fakePublisher) ListByUserID(_ context.Context, userID uint, limit int) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, m := range f.snapshot() {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return trimMessages(out, limit), nil
}

type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	received []ai.ChatMessage
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls++
	f.received = messages
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
	return f.reply, f.err
}

type fakeUserStore struct {
	users []*model.User
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type fakeDenylist struct {
	revoked map[string]time.Duration
}

func (f *fakeDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = make(map[string]time.Duration)
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := f.revoked[tokenID]
	return ok, nil
}

type fakeHistoryCache struct {
	mu          sync.Mutex
	entries     map[uint][]model.ChatMessage
	invalidated int
}

func (f *fakeHistoryCache) Get(_ context.Context, userID uint) ([]model.ChatMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages, ok := f.entries[userID]
	return messages, ok, nil
}

func (f *fakeHistoryCache) Set(_ context.Context, userID uint, messages []model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[uint][]model.ChatMessage)
	}
	f.entries[userID] = messages
	return nil
}

func (f *fakeHistoryCache) Invalidate(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
	f.invalidated++
	return nil
}

type countingMessageStore struct {
	MessageStore
	calls int
}

func (c *countingMessageStore) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.ChatMessage, error) {
	c.calls++
	return c.MessageStore.ListByUserID(ctx, userID, limit)
}
