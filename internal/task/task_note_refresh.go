package task

import (
	"context"

	"github.com/haierkeys/pin-notes-service/internal/app"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// NoteRefreshTask 定时重新拉取笔记集合，使临时图片链接在过期前续期
type NoteRefreshTask struct {
	app      *app.App
	schedule cron.Schedule
}

// NewNoteRefreshTask 按 app.refresh-spec 创建刷新任务
func NewNoteRefreshTask(appContainer *app.App) (Task, error) {
	spec := appContainer.Config().App.RefreshSpec
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid app.refresh-spec %q", spec)
	}
	return &NoteRefreshTask{app: appContainer, schedule: schedule}, nil
}

func (t *NoteRefreshTask) Name() string {
	return "NoteRefresh"
}

func (t *NoteRefreshTask) Run(ctx context.Context) error {
	if t.app.IsShuttingDown() {
		return nil
	}
	defer t.app.TrackOperation()()

	ctx, cancel := context.WithTimeout(ctx, t.app.Config().GetContextTimeout())
	defer cancel()
	return t.app.NoteService.Refresh(ctx)
}

func (t *NoteRefreshTask) Schedule() cron.Schedule {
	return t.schedule
}

// IsStartupRun 启动时立即拉取一次，看板首屏即有数据
func (t *NoteRefreshTask) IsStartupRun() bool {
	return true
}

func init() {
	Register(NewNoteRefreshTask)
}
