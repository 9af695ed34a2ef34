package task

import (
	"context"
	"time"

	"github.com/haierkeys/pin-notes-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() cron.Schedule       // 执行计划，nil 表示不循环执行
	IsStartupRun() bool            // 是否立即执行一次
}

// ParseSchedule 解析标准 cron 表达式或 @every 10m 这类描述符，空字符串返回 nil
func ParseSchedule(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, nil
	}
	return cron.ParseStandard(spec)
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	now    func() time.Time
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		now:    time.Now,
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

// startTask 启动单个任务，关闭信号到达时取消正在执行的任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-closeSignal:
				cancel()
			case <-ctx.Done():
			}
		}()

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			go s.run(ctx, task, "startupRun")
		}

		schedule := task.Schedule()
		if schedule == nil {
			<-ctx.Done()
			return
		}

		for {
			timer := time.NewTimer(schedule.Next(s.now()).Sub(s.now()))
			select {
			case <-timer.C:
				s.run(ctx, task, "loopRun")
			case <-ctx.Done():
				timer.Stop()
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}

// run 执行一次任务，panic 只记录日志
func (s *Scheduler) run(ctx context.Context, task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	start := time.Now()
	s.logger.Debug("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
		return
	}
	s.logger.Info("task log",
		zap.String("name", task.Name()),
		zap.String("mode", mode),
		zap.Duration("duration", time.Since(start)))
}
