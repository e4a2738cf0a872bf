// Package api cung cấp các API public để tương tác với GitHub harvester
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thep200/github-harvester/cfg"
	githubapi "github.com/thep200/github-harvester/internal/github_api"
	"github.com/thep200/github-harvester/internal/harvester"
	"github.com/thep200/github-harvester/internal/model"
	"github.com/thep200/github-harvester/pkg/db"
	"github.com/thep200/github-harvester/pkg/log"
)

// HarvestStats chứa thống kê về harvest job hiện tại hoặc gần nhất
type HarvestStats struct {
	Kind              string    `json:"kind"`
	Target            string    `json:"target"`
	IsRunning         bool      `json:"isRunning"`
	StartTime         time.Time `json:"startTime"`
	Duration          string    `json:"duration"`
	Phase             string    `json:"phase"`
	PagesFetched      int       `json:"pagesFetched"`
	RecordsNormalized int       `json:"recordsNormalized"`
	RecordsDropped    int       `json:"recordsDropped"`
	ExportPath        string    `json:"exportPath"`
	LastError         string    `json:"lastError"`
}

// HarvesterAPI cung cấp các API để chạy và theo dõi harvest job
type HarvesterAPI struct {
	ctx       context.Context
	config    *cfg.Config
	logger    log.Logger
	mysql     *db.Mysql
	harvester *harvester.Harvester

	statsMu    sync.RWMutex
	harvesting bool
	stats      *HarvestStats
	currentJob *harvester.HarvestJob
}

// NewHarvesterAPI tạo một instance mới của HarvesterAPI
func NewHarvesterAPI() *HarvesterAPI {
	return &HarvesterAPI{
		stats: &HarvestStats{},
	}
}

// Initialize khởi tạo các thành phần cần thiết cho harvester
func (a *HarvesterAPI) Initialize(ctx context.Context) error {
	a.ctx = ctx

	var err error

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	a.config, err = loader.Load()
	if err != nil {
		a.logger, _ = log.NewCslLogger()
		a.logger.Error(a.ctx, "Failed to load configuration: %v", err)
		return err
	}

	// Set up logger
	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Set up database. MySQL chỉ dùng cho các endpoint đọc dữ liệu,
	// không có cũng không chặn harvest ra file.
	a.mysql, err = db.NewMysql(a.config)
	if err != nil {
		a.logger.Warn(a.ctx, "Failed to connect to database: %v", err)
		a.mysql = nil
	} else if err := a.migrateDatabase(); err != nil {
		a.logger.Warn(a.ctx, "Failed to migrate database: %v", err)
	}

	caller := githubapi.NewCaller(a.logger, a.config)
	a.harvester, err = harvester.NewHarvester(a.logger, a.config, caller)
	if err != nil {
		return fmt.Errorf("failed to create harvester: %w", err)
	}

	// Tiêu thụ progress channel vào stats, chạy suốt vòng đời API
	go func() {
		for p := range a.harvester.Progress() {
			a.updateStats(func(s *HarvestStats) {
				s.Phase = p.Phase
				s.PagesFetched = p.PagesFetched
				s.RecordsNormalized = p.RecordsNormalized
			})
		}
	}()

	return nil
}

// migrateDatabase đảm bảo các bảng cần thiết tồn tại
func (a *HarvesterAPI) migrateDatabase() error {
	if a.mysql == nil {
		return errors.New("database connection not initialized")
	}

	followerMd, err := model.NewFollower(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create follower model: %w", err)
	}

	contributorMd, err := model.NewContributor(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create contributor model: %w", err)
	}

	return a.mysql.Migrate(followerMd, contributorMd)
}

// StartHarvest bắt đầu một harvest job chạy nền.
// kind là followers, contributors hoặc forks; target là username
// hoặc owner/repo tùy kind.
func (a *HarvesterAPI) StartHarvest(kind, target string) (string, error) {
	if a.harvester == nil {
		return "", errors.New("harvester is not initialized")
	}

	a.statsMu.RLock()
	isHarvesting := a.harvesting
	a.statsMu.RUnlock()

	if isHarvesting {
		return "A harvest is already in progress", nil
	}

	fetchTarget, err := harvester.NewFetchTarget(kind, target)
	if err != nil {
		return "", err
	}

	job := harvester.NewJob(fetchTarget)

	a.statsMu.Lock()
	a.harvesting = true
	a.currentJob = job
	a.stats = &HarvestStats{
		Kind:      kind,
		Target:    target,
		IsRunning: true,
		StartTime: time.Now(),
	}
	a.statsMu.Unlock()

	go func() {
		a.harvester.RunJob(a.ctx, job)

		a.statsMu.Lock()
		a.currentJob = nil
		a.harvesting = false
		a.statsMu.Unlock()

		a.updateStats(func(s *HarvestStats) {
			s.IsRunning = false
			s.PagesFetched = job.PagesFetched()
			s.RecordsNormalized = job.RecordsNormalized()
			s.RecordsDropped = job.RecordsDropped()
			if job.Status() == harvester.StatusFailed {
				s.LastError = job.Reason()
			} else {
				s.ExportPath = job.ExportPath()
			}
		})
	}()

	return "Started harvesting " + fetchTarget.Describe(), nil
}

// StopHarvest yêu cầu job đang chạy dừng lại. Các request đang bay
// được hoàn tất, không có request mới nào được lên lịch.
func (a *HarvesterAPI) StopHarvest() (string, error) {
	a.statsMu.RLock()
	job := a.currentJob
	isHarvesting := a.harvesting
	a.statsMu.RUnlock()

	if !isHarvesting {
		return "No harvest is in progress", nil
	}
	if job != nil {
		job.Abandon()
	}

	return "Stopping harvest (in-flight requests will drain)", nil
}

// GetHarvestStats trả về thống kê về harvest job
func (a *HarvesterAPI) GetHarvestStats() (*HarvestStats, error) {
	a.statsMu.RLock()
	defer a.statsMu.RUnlock()

	if a.stats == nil {
		return &HarvestStats{}, nil
	}

	stats := *a.stats
	if stats.IsRunning {
		stats.Duration = time.Since(stats.StartTime).String()
	}

	return &stats, nil
}

// updateStats cập nhật thống kê một cách an toàn
func (a *HarvesterAPI) updateStats(updateFn func(*HarvestStats)) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()

	if a.stats == nil {
		a.stats = &HarvestStats{}
	}

	updateFn(a.stats)
}

// CleanFork star rồi xóa một fork của user đã xác thực
func (a *HarvesterAPI) CleanFork(fullName string) (string, error) {
	if a.harvester == nil {
		return "", errors.New("harvester is not initialized")
	}
	if err := a.harvester.CleanFork(a.ctx, fullName); err != nil {
		return "", err
	}
	return "Starred and deleted fork " + fullName, nil
}

// GetDatabaseStatus kiểm tra trạng thái kết nối cơ sở dữ liệu
func (a *HarvesterAPI) GetDatabaseStatus() (string, error) {
	if a.mysql == nil {
		return "Database not initialized", nil
	}

	db, err := a.mysql.Db()
	if err != nil {
		return "Database error: " + err.Error(), err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return "Database error: " + err.Error(), err
	}

	if err := sqlDB.Ping(); err != nil {
		return "Database not connected: " + err.Error(), err
	}

	return "Database connected", nil
}
