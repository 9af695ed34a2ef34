package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/pkg/logger"
	"github.com/haierkeys/pin-notes-service/pkg/validator"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// List 获取全部笔记并解析图片链接，成功后发布为当前集合
	List(ctx context.Context) ([]*domain.Note, error)

	// Create 上传图片（可选）、创建记录，然后重新拉取列表
	Create(ctx context.Context, params *dto.NoteCreateRequest, upload *domain.Upload) ([]*domain.Note, error)

	// Delete 先从本地集合移除，再删除图片和记录
	Delete(ctx context.Context, params *dto.NoteDeleteRequest) (*domain.DeleteOutcome, error)

	// Refresh 重新拉取列表，供定时任务续期图片链接
	Refresh(ctx context.Context) error

	// Notes 当前集合的副本
	Notes() []*domain.Note

	// Find 在当前集合中查找笔记
	Find(id string) (*domain.Note, bool)

	// Subscribe 注册集合变化的观察者，返回取消函数
	Subscribe(fn func([]*domain.Note)) (unsubscribe func())
}

// noteService 实现 NoteService 接口
type noteService struct {
	repo    domain.NoteRepository
	blob    domain.BlobStore
	config  *AppServiceConfig
	logger  *zap.Logger
	metrics *Metrics

	mu    sync.RWMutex
	notes []*domain.Note

	subMu   sync.Mutex
	subs    map[int]func([]*domain.Note)
	nextSub int
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(repo domain.NoteRepository, blob domain.BlobStore, logger *zap.Logger, metrics *Metrics, config *ServiceConfig) NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	var appConfig *AppServiceConfig
	if config != nil {
		appConfig = &config.App
	}
	return &noteService{
		repo:    repo,
		blob:    blob,
		config:  appConfig,
		logger:  logger,
		metrics: metrics,
		notes:   []*domain.Note{},
		subs:    make(map[int]func([]*domain.Note)),
	}
}

// List 获取全部笔记，任意一张图片解析失败时整个列表失败，已发布的集合保持不变
func (s *noteService) List(ctx context.Context) ([]*domain.Note, error) {
	start := time.Now()
	notes, err := s.fetch(ctx)
	s.metrics.observe("list", start, err)
	if err != nil {
		s.logger.Warn("list notes failed", zap.Error(err))
		return nil, err
	}

	s.publish(notes)
	s.logger.Debug("notes listed",
		zap.Int(logger.FieldCount, len(notes)),
		zap.Duration(logger.FieldDuration, time.Since(start)))
	return cloneNotes(notes), nil
}

// fetch lists the records and resolves image URLs with bounded concurrency.
// The returned notes are private to the caller until published.
func (s *noteService) fetch(ctx context.Context) ([]*domain.Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.concurrency())
	for _, note := range notes {
		if !note.HasImage() {
			continue
		}
		note := note
		g.Go(func() error {
			url, err := s.blob.Get(gctx, note.Name)
			if err != nil {
				if errors.Is(err, domain.ErrBlobNotFound) && s.config.omitMissingImages() {
					s.metrics.image("missing")
					s.logger.Warn("note image missing, shown without image",
						zap.String(logger.FieldNoteID, note.ID),
						zap.String(logger.FieldNoteName, note.Name))
					return nil
				}
				s.metrics.image("failed")
				return err
			}
			s.metrics.image("resolved")
			note.ImageURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return notes, nil
}

// Create 依次执行：上传图片、创建记录、刷新列表。记录创建失败时已上传的图片不会回收
func (s *noteService) Create(ctx context.Context, params *dto.NoteCreateRequest, upload *domain.Upload) ([]*domain.Note, error) {
	start := time.Now()
	notes, err := s.create(ctx, params, upload)
	s.metrics.observe("create", start, err)
	return notes, err
}

func (s *noteService) create(ctx context.Context, params *dto.NoteCreateRequest, upload *domain.Upload) ([]*domain.Note, error) {
	name := strings.TrimSpace(params.Name)
	description := strings.TrimSpace(params.Description)
	if name == "" {
		return nil, domain.ErrNoteNameRequired
	}
	// 名称同时是图片键
	if !validator.IsBlobKey(name) {
		return nil, domain.ErrNoteNameInvalid
	}
	if description == "" {
		return nil, domain.ErrNoteDescriptionRequired
	}

	input := &domain.NoteInput{Name: name, Description: description}

	if upload != nil {
		if s.config != nil && s.config.UploadMaxSize > 0 && int64(len(upload.Content)) > s.config.UploadMaxSize {
			return nil, domain.ErrUploadTooLarge
		}
		contentType := upload.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = mimetype.Detect(upload.Content).String()
		}
		if err := s.blob.Put(ctx, name, upload.Content, contentType); err != nil {
			s.logger.Warn("upload note image failed",
				zap.String(logger.FieldNoteName, name),
				zap.Int(logger.FieldSize, len(upload.Content)),
				zap.Error(err))
			return nil, err
		}
		input.ImageKey = name
	}

	note, err := s.repo.Create(ctx, input)
	if err != nil {
		if upload != nil {
			s.logger.Warn("create note record failed, image left in blob store",
				zap.String(logger.FieldNoteName, name),
				zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("note created",
		zap.String(logger.FieldNoteID, note.ID),
		zap.String(logger.FieldNoteName, name),
		zap.Bool("image", input.ImageKey != ""))

	return s.List(ctx)
}

// Delete 乐观删除：本地集合立即移除，随后删除图片和记录
func (s *noteService) Delete(ctx context.Context, params *dto.NoteDeleteRequest) (*domain.DeleteOutcome, error) {
	start := time.Now()
	outcome, err := s.delete(ctx, params)
	s.metrics.observe("delete", start, err)
	return outcome, err
}

func (s *noteService) delete(ctx context.Context, params *dto.NoteDeleteRequest) (*domain.DeleteOutcome, error) {
	removed, index := s.removeLocal(params.ID)
	outcome := &domain.DeleteOutcome{
		ID:      params.ID,
		State:   domain.DeletePending,
		Removed: removed != nil,
		Index:   index,
	}

	name := params.Name
	if name == "" && removed != nil {
		name = removed.Name
	}

	var err error
	switch {
	case name == "":
		s.logger.Warn("note image key unknown, image not removed",
			zap.String(logger.FieldNoteID, params.ID))
	case !validator.IsBlobKey(name):
		s.logger.Warn("note name is not a valid image key, image not removed",
			zap.String(logger.FieldNoteID, params.ID),
			zap.String(logger.FieldNoteName, name))
	default:
		err = s.blob.Remove(ctx, name)
	}
	if err == nil {
		err = s.repo.Delete(ctx, params.ID)
	}

	if err != nil {
		fields := []zap.Field{
			zap.String(logger.FieldNoteID, params.ID),
			zap.String(logger.FieldNoteName, name),
			zap.Error(err),
		}
		if removed != nil && s.config != nil && s.config.DeleteRollback {
			s.restoreLocal(removed, index)
			outcome.State = domain.DeleteRolledBack
			s.logger.Warn("delete note failed, restored locally", fields...)
		} else {
			s.logger.Warn("delete note failed", fields...)
		}
		return outcome, err
	}

	outcome.State = domain.DeleteCommitted
	s.logger.Info("note deleted",
		zap.String(logger.FieldNoteID, params.ID),
		zap.String(logger.FieldNoteName, name))
	return outcome, nil
}

func (s *noteService) Refresh(ctx context.Context) error {
	_, err := s.List(ctx)
	return err
}

func (s *noteService) Notes() []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

func (s *noteService) Find(id string) (*domain.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return nil, false
}

func (s *noteService) Subscribe(fn func([]*domain.Note)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// publish replaces the collection. Overlapping Lists are not ordered, the
// last one to publish wins.
func (s *noteService) publish(notes []*domain.Note) {
	s.mu.Lock()
	s.notes = notes
	snapshot := cloneNotes(notes)
	s.mu.Unlock()
	s.notify(snapshot)
}

// removeLocal 从集合中移除指定笔记，返回被移除的笔记和原位置
func (s *noteService) removeLocal(id string) (*domain.Note, int) {
	s.mu.Lock()
	index := -1
	for i, n := range s.notes {
		if n.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return nil, -1
	}

	removed := s.notes[index]
	next := make([]*domain.Note, 0, len(s.notes)-1)
	next = append(next, s.notes[:index]...)
	next = append(next, s.notes[index+1:]...)
	s.notes = next
	snapshot := cloneNotes(next)
	s.mu.Unlock()

	s.notify(snapshot)
	return removed, index
}

// restoreLocal puts a note back at its previous position unless a List
// published since the removal already contains it.
func (s *noteService) restoreLocal(note *domain.Note, index int) {
	s.mu.Lock()
	for _, n := range s.notes {
		if n.ID == note.ID {
			s.mu.Unlock()
			return
		}
	}
	if index > len(s.notes) {
		index = len(s.notes)
	}
	next := make([]*domain.Note, 0, len(s.notes)+1)
	next = append(next, s.notes[:index]...)
	next = append(next, note)
	next = append(next, s.notes[index:]...)
	s.notes = next
	snapshot := cloneNotes(next)
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *noteService) notify(snapshot []*domain.Note) {
	s.metrics.size(len(snapshot))

	s.subMu.Lock()
	fns := make([]func([]*domain.Note), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneNotes(snapshot))
	}
}

func cloneNotes(notes []*domain.Note) []*domain.Note {
	out := make([]*domain.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
