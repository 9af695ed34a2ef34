package dao

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/haierkeys/pin-notes-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphqlCall struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
	Header    http.Header            `json:"-"`
}

// fakeGraphQL records every request and answers with the reply for the
// operation name found in the query.
type fakeGraphQL struct {
	mu      sync.Mutex
	calls   []graphqlCall
	replies map[string]string
}

func (f *fakeGraphQL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call graphqlCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call.Header = r.Header.Clone()

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	for op, reply := range f.replies {
		if strings.Contains(call.Query, op) {
			_, _ = w.Write([]byte(reply))
			return
		}
	}
	_, _ = w.Write([]byte(`{"errors":[{"message":"unknown operation"}]}`))
}

func newGraphQLRepo(t *testing.T, cfg GraphQLConfig, replies map[string]string) (domain.NoteRepository, *fakeGraphQL) {
	t.Helper()
	fake := &fakeGraphQL{replies: replies}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg.Endpoint = srv.URL
	repo, err := NewNoteGraphQLRepository(cfg, nil)
	require.NoError(t, err)
	return repo, fake
}

func TestNoteGraphQLRepository_List(t *testing.T) {
	repo, fake := newGraphQLRepo(t, GraphQLConfig{APIKey: "da2-key"}, map[string]string{
		"ListNotes": `{"data":{"listNotes":{"items":[
			{"id":"1","name":"Groceries","description":"Milk, eggs","image":null},
			null,
			{"id":"2","name":"Trip","description":"Photo","image":"Trip"}
		]}}}`,
	})

	notes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "1", notes[0].ID)
	assert.False(t, notes[0].HasImage())
	assert.Equal(t, "Trip", notes[1].ImageKey)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "da2-key", fake.calls[0].Header.Get("x-api-key"))
	assert.Empty(t, fake.calls[0].Header.Get("Authorization"))
	assert.Contains(t, fake.calls[0].Query, "listNotes")
}

func TestNoteGraphQLRepository_Create(t *testing.T) {
	repo, fake := newGraphQLRepo(t, GraphQLConfig{Token: "jwt-token"}, map[string]string{
		"CreateNote": `{"data":{"createNote":{"id":"7","name":"Trip","description":"Photo","image":"Trip"}}}`,
	})
	ctx := context.Background()

	note, err := repo.Create(ctx, &domain.NoteInput{Name: "Trip", Description: "Photo", ImageKey: "Trip"})
	require.NoError(t, err)
	assert.Equal(t, "7", note.ID)
	assert.Equal(t, "Trip", note.ImageKey)

	_, err = repo.Create(ctx, &domain.NoteInput{Name: "Groceries", Description: "Milk, eggs"})
	require.NoError(t, err)

	require.Len(t, fake.calls, 2)
	assert.Equal(t, "jwt-token", fake.calls[0].Header.Get("Authorization"))

	input := fake.calls[0].Variables["input"].(map[string]interface{})
	assert.Equal(t, "Trip", input["name"])
	assert.Equal(t, "Photo", input["description"])
	assert.Equal(t, "Trip", input["image"])

	input = fake.calls[1].Variables["input"].(map[string]interface{})
	_, hasImage := input["image"]
	assert.False(t, hasImage, "image is omitted when no file was uploaded")
}

func TestNoteGraphQLRepository_Delete(t *testing.T) {
	repo, fake := newGraphQLRepo(t, GraphQLConfig{}, map[string]string{
		"DeleteNote": `{"data":{"deleteNote":{"id":"42"}}}`,
	})

	require.NoError(t, repo.Delete(context.Background(), "42"))
	input := fake.calls[0].Variables["input"].(map[string]interface{})
	assert.Equal(t, "42", input["id"])
}

func TestNoteGraphQLRepository_DeleteMissing(t *testing.T) {
	repo, _ := newGraphQLRepo(t, GraphQLConfig{}, map[string]string{
		"DeleteNote": `{"data":{"deleteNote":null}}`,
	})

	err := repo.Delete(context.Background(), "42")
	assert.True(t, errors.Is(err, domain.ErrRemoteMutation))
	assert.True(t, errors.Is(err, domain.ErrNoteNotFound))
}

func TestNoteGraphQLRepository_Errors(t *testing.T) {
	repo, _ := newGraphQLRepo(t, GraphQLConfig{}, map[string]string{})
	ctx := context.Background()

	_, err := repo.List(ctx)
	assert.True(t, errors.Is(err, domain.ErrRemoteQuery))
	assert.Contains(t, err.Error(), "unknown operation")

	_, err = repo.Create(ctx, &domain.NoteInput{Name: "Groceries"})
	assert.True(t, errors.Is(err, domain.ErrRemoteMutation))

	err = repo.Delete(ctx, "42")
	assert.True(t, errors.Is(err, domain.ErrRemoteMutation))
	assert.False(t, errors.Is(err, domain.ErrNoteNotFound))
}

func TestNewNoteGraphQLRepositoryRequiresEndpoint(t *testing.T) {
	_, err := NewNoteGraphQLRepository(GraphQLConfig{}, nil)
	assert.Error(t, err)
}
