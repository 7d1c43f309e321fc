package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// ReminderCreator 生成每日学习提醒
type ReminderCreator interface {
	CreateDailyReminders(now time.Time) (int, error)
}

// Scheduler 管理后台定时任务
type Scheduler struct {
	scheduler *gocron.Scheduler
	reminders ReminderCreator
	location  *time.Location
}

// New 创建调度器，任务时间按 location 计算
func New(reminders ReminderCreator, location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(location),
		reminders: reminders,
		location:  location,
	}
}

// Start 注册每日提醒任务并异步运行
func (s *Scheduler) Start(reminderHour int) error {
	if reminderHour < 0 || reminderHour > 23 {
		return fmt.Errorf("invalid reminder hour %d", reminderHour)
	}

	at := fmt.Sprintf("%02d:00", reminderHour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.RunDailyReminders); err != nil {
		return fmt.Errorf("schedule daily reminders: %w", err)
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: daily reminders scheduled at %s (%s)", at, s.location)
	return nil
}

// Stop 停止所有任务
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunDailyReminders 执行一次提醒任务，错误只记录日志
func (s *Scheduler) RunDailyReminders() {
	count, err := s.reminders.CreateDailyReminders(time.Now().In(s.location))
	if err != nil {
		log.Printf("scheduler: daily reminders failed: %v", err)
		return
	}
	log.Printf("scheduler: daily reminders done, %d created", count)
}
