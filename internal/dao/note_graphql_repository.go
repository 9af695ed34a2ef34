package dao

import (
	"context"
	"net/http"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GraphQL 接口约定，字段与外部 API 保持一致
const (
	listNotesQuery = `query ListNotes {
  listNotes {
    items { id name description image }
  }
}`
	createNoteMutation = `mutation CreateNote($input: CreateNoteInput!) {
  createNote(input: $input) { id name description image }
}`
	deleteNoteMutation = `mutation DeleteNote($input: DeleteNoteInput!) {
  deleteNote(input: $input) { id }
}`
)

// GraphQLConfig 外部 GraphQL 记录存储配置
type GraphQLConfig struct {
	Endpoint string
	APIKey   string // 以 x-api-key 请求头发送
	Token    string // 未配置 APIKey 时以 Authorization 请求头发送
	Timeout  time.Duration
}

type graphqlNote struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

func (n *graphqlNote) toDomain() *domain.Note {
	note := &domain.Note{ID: n.ID, Name: n.Name, Description: n.Description}
	if n.Image != nil {
		note.ImageKey = *n.Image
	}
	return note
}

// noteGraphQLRepository 基于外部 GraphQL API 的 domain.NoteRepository 实现
type noteGraphQLRepository struct {
	client *graphql.Client
	config GraphQLConfig
	logger *zap.Logger
}

// NewNoteGraphQLRepository 创建 GraphQL 记录存储
func NewNoteGraphQLRepository(cfg GraphQLConfig, lg *zap.Logger) (domain.NoteRepository, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("dao: graphql endpoint is required")
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	client := graphql.NewClient(cfg.Endpoint, graphql.WithHTTPClient(hc))
	client.Log = func(s string) { lg.Debug(s) }

	return &noteGraphQLRepository{
		client: client,
		config: cfg,
		logger: lg,
	}, nil
}

func (r *noteGraphQLRepository) newRequest(q string) *graphql.Request {
	req := graphql.NewRequest(q)
	if r.config.APIKey != "" {
		req.Header.Set("x-api-key", r.config.APIKey)
	} else if r.config.Token != "" {
		req.Header.Set("Authorization", r.config.Token)
	}
	return req
}

// List 获取全部笔记
func (r *noteGraphQLRepository) List(ctx context.Context) ([]*domain.Note, error) {
	var resp struct {
		ListNotes struct {
			Items []*graphqlNote `json:"items"`
		} `json:"listNotes"`
	}
	if err := r.client.Run(ctx, r.newRequest(listNotesQuery), &resp); err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteQuery, "listNotes", "", err)
	}

	notes := make([]*domain.Note, 0, len(resp.ListNotes.Items))
	for _, item := range resp.ListNotes.Items {
		// AppSync 列表可能包含已被删除记录留下的 null 项
		if item == nil {
			continue
		}
		notes = append(notes, item.toDomain())
	}
	return notes, nil
}

// Create 创建笔记，image 为空时不发送该字段
func (r *noteGraphQLRepository) Create(ctx context.Context, input *domain.NoteInput) (*domain.Note, error) {
	fields := map[string]interface{}{
		"name":        input.Name,
		"description": input.Description,
	}
	if input.ImageKey != "" {
		fields["image"] = input.ImageKey
	}

	req := r.newRequest(createNoteMutation)
	req.Var("input", fields)

	var resp struct {
		CreateNote *graphqlNote `json:"createNote"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteMutation, "createNote", input.Name, err)
	}
	if resp.CreateNote == nil {
		return nil, domain.NewStoreError(domain.ErrRemoteMutation, "createNote", input.Name, errors.New("empty response"))
	}
	return resp.CreateNote.toDomain(), nil
}

// Delete 删除笔记，API 对不存在的记录返回 null
func (r *noteGraphQLRepository) Delete(ctx context.Context, id string) error {
	req := r.newRequest(deleteNoteMutation)
	req.Var("input", map[string]interface{}{"id": id})

	var resp struct {
		DeleteNote *struct {
			ID string `json:"id"`
		} `json:"deleteNote"`
	}
	if err := r.client.Run(ctx, req, &resp); err != nil {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, err)
	}
	if resp.DeleteNote == nil {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, domain.ErrNoteNotFound)
	}
	return nil
}
