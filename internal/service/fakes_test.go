package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/haierkeys/pin-notes-service/internal/domain"
)

// callLog records remote calls across both fakes so tests can assert order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeRepo struct {
	mu      sync.Mutex
	log     *callLog
	records []*domain.Note
	nextID  int

	listErr   error
	createErr error
	deleteErr error
}

func newFakeRepo(log *callLog, notes ...*domain.Note) *fakeRepo {
	r := &fakeRepo{log: log, nextID: 100}
	for _, n := range notes {
		r.records = append(r.records, n.Clone())
	}
	return r
}

func (r *fakeRepo) List(ctx context.Context) ([]*domain.Note, error) {
	r.log.add("repo.List")
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteQuery, "listNotes", "", r.listErr)
	}
	out := make([]*domain.Note, len(r.records))
	for i, n := range r.records {
		out[i] = n.Clone()
	}
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, input *domain.NoteInput) (*domain.Note, error) {
	r.log.add("repo.Create %s", input.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteMutation, "createNote", input.Name, r.createErr)
	}
	r.nextID++
	n := &domain.Note{
		ID:          fmt.Sprintf("%d", r.nextID),
		Name:        input.Name,
		Description: input.Description,
		ImageKey:    input.ImageKey,
	}
	r.records = append(r.records, n)
	return n.Clone(), nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.log.add("repo.Delete %s", id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, r.deleteErr)
	}
	for i, n := range r.records {
		if n.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, domain.ErrNoteNotFound)
}

func (r *fakeRepo) get(id string) (*domain.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.records {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return nil, false
}

type blobObject struct {
	content     []byte
	contentType string
}

type fakeBlob struct {
	mu      sync.Mutex
	log     *callLog
	objects map[string]blobObject

	getErr    map[string]error
	putErr    error
	removeErr error

	// onGet and onRemove run before the fake answers
	onGet    func(key string)
	onRemove func(key string)
}

func newFakeBlob(log *callLog, keys ...string) *fakeBlob {
	b := &fakeBlob{log: log, objects: map[string]blobObject{}, getErr: map[string]error{}}
	for _, k := range keys {
		b.objects[k] = blobObject{content: []byte(k)}
	}
	return b
}

func resolvedURL(key string) string {
	return "https://blob.test/" + key + "?sig=1"
}

func (b *fakeBlob) Put(ctx context.Context, key string, content []byte, contentType string) error {
	b.log.add("blob.Put %s", key)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return domain.NewStoreError(domain.ErrBlobWrite, "put", key, b.putErr)
	}
	b.objects[key] = blobObject{content: append([]byte(nil), content...), contentType: contentType}
	return nil
}

func (b *fakeBlob) Get(ctx context.Context, key string) (string, error) {
	b.log.add("blob.Get %s", key)
	if b.onGet != nil {
		b.onGet(key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.getErr[key]; err != nil {
		return "", domain.NewStoreError(domain.ErrBlobRead, "get", key, err)
	}
	if _, ok := b.objects[key]; !ok {
		return "", domain.NewStoreError(domain.ErrBlobNotFound, "get", key, nil)
	}
	return resolvedURL(key), nil
}

func (b *fakeBlob) Remove(ctx context.Context, key string) error {
	b.log.add("blob.Remove %s", key)
	if b.onRemove != nil {
		b.onRemove(key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removeErr != nil {
		return domain.NewStoreError(domain.ErrBlobWrite, "remove", key, b.removeErr)
	}
	delete(b.objects, key)
	return nil
}

func (b *fakeBlob) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	if !ok {
		return nil, domain.NewStoreError(domain.ErrBlobNotFound, "open", key, nil)
	}
	return io.NopCloser(bytes.NewReader(obj.content)), nil
}

func (b *fakeBlob) object(key string) (blobObject, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	return obj, ok
}

var errBackend = errors.New("backend unavailable")
