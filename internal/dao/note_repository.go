package dao

import (
	"context"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/model"

	"github.com/google/uuid"
)

// noteRepository 基于 gorm 的 domain.NoteRepository 实现
type noteRepository struct {
	dao *Dao
	now func() time.Time
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao, now: time.Now}
}

// toDomain 将 DAO Note 转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	return &domain.Note{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ImageKey:    m.Image,
		CreatedAt:   m.CreatedAt,
	}
}

// List 按创建顺序返回全部笔记
func (r *noteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	var rows []*model.Note
	err := r.dao.Db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteQuery, "listNotes", "", err)
	}
	notes := make([]*domain.Note, 0, len(rows))
	for _, m := range rows {
		notes = append(notes, r.toDomain(m))
	}
	return notes, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, input *domain.NoteInput) (*domain.Note, error) {
	m := &model.Note{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Image:       input.ImageKey,
		CreatedAt:   r.now(),
	}
	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, domain.NewStoreError(domain.ErrRemoteMutation, "createNote", input.Name, err)
	}
	return r.toDomain(m), nil
}

// Delete 物理删除笔记
func (r *noteRepository) Delete(ctx context.Context, id string) error {
	res := r.dao.Db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
	if res.Error != nil {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewStoreError(domain.ErrRemoteMutation, "deleteNote", id, domain.ErrNoteNotFound)
	}
	return nil
}
