package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RedisConfig Redis 记录存储配置
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	DialTimeout time.Duration
}

// NewRedisClient 创建 Redis 客户端并检查连通性
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "dao: redis ping")
	}
	return client, nil
}

// noteRedisRepository stores each note as a hash and keeps insertion order in
// a sorted set scored by creation time in microseconds (exact in a float64).
type noteRedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewNoteRedisRepository 创建 Redis 记录存储
func NewNoteRedisRepository(client *redis.Client, keyPrefix string) domain.NoteRepository {
	if keyPrefix == "" {
		keyPrefix = "pin-notes:"
	}
	return &noteRedisRepository{client: client, prefix: keyPrefix, now: time.Now}
}

func (r *noteRedisRepository) indexKey() string {
	return r.prefix + "notes"
}

func (r *noteRedisRepository) noteKey(id string) string {
	return r.prefix + "note:" + id
}

// List 按写入顺序返回全部笔记
func (r *noteRedisRepository) List(ctx context.Context) ([]*domain.Note, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteQuery, "listNotes", "", err)
	}
	if len(ids) == 0 {
		return []*domain.Note{}, nil
	}

	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.noteKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteQuery, "listNotes", "", err)
	}

	notes := make([]*domain.Note, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// 索引中残留但记录已不存在，跳过
		if len(fields) == 0 {
			continue
		}
		note := &domain.Note{
			ID:          ids[i],
			Name:        fields["name"],
			Description: fields["description"],
			ImageKey:    fields["image"],
		}
		if ns, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
			note.CreatedAt = time.Unix(0, ns)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Create 创建笔记
func (r *noteRedisRepository) Create(ctx context.Context, input *domain.NoteInput) (*domain.Note, error) {
	now := r.now()
	note := &domain.Note{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		ImageKey:    input.ImageKey,
		CreatedAt:   now,
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.noteKey(note.ID),
			"name", note.Name,
			"description", note.Description,
			"image", note.ImageKey,
			"created_at", strconv.FormatInt(now.UnixNano(), 10),
		)
		pipe.ZAdd(ctx, r.indexKey(), &redis.Z{Score: float64(now.UnixMicro()), Member: note.ID})
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteMutation, "createNote", input.Name, err)
	}
	return note, nil
}

// Delete 删除笔记
func (r *noteRedisRepository) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, r.indexKey(), id)
		pipe.Del(ctx, r.noteKey(id))
		return nil
	})
	if err != nil {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, err)
	}
	if removed.Val() == 0 {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, domain.ErrNoteNotFound)
	}
	return nil
}
