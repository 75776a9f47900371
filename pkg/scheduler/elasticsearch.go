package scheduler

import (
	"context"
	"time"

	"github.com/fadedpez/cccounter/internal/logging"
)

// IndexMaintainer is the part of the Elasticsearch repository the
// maintenance tasks need
type IndexMaintainer interface {
	RotateIndices(ctx context.Context) error
	PruneOldIndices(ctx context.Context) error
}

// ElasticsearchMaintenanceScheduler manages scheduled maintenance tasks for Elasticsearch
type ElasticsearchMaintenanceScheduler struct {
	scheduler        *Scheduler
	repo             IndexMaintainer
	rotationInterval time.Duration
	pruneInterval    time.Duration
}

// NewElasticsearchMaintenanceScheduler creates a new scheduler for Elasticsearch maintenance tasks
func NewElasticsearchMaintenanceScheduler(repo IndexMaintainer, rotationInterval time.Duration) *ElasticsearchMaintenanceScheduler {
	if rotationInterval <= 0 {
		rotationInterval = 24 * time.Hour
	}
	return &ElasticsearchMaintenanceScheduler{
		scheduler:        NewScheduler(),
		repo:             repo,
		rotationInterval: rotationInterval,
		pruneInterval:    7 * 24 * time.Hour,
	}
}

// Start initializes and starts the maintenance scheduler
func (s *ElasticsearchMaintenanceScheduler) Start(ctx context.Context) {
	s.scheduler.AddTask("index_rotation", s.rotationInterval, s.repo.RotateIndices)
	s.scheduler.AddTask("index_pruning", s.pruneInterval, s.repo.PruneOldIndices)

	s.scheduler.Start(ctx)
	logging.Default.Info("Elasticsearch maintenance scheduler started")
}

// Stop stops the maintenance scheduler
func (s *ElasticsearchMaintenanceScheduler) Stop() {
	s.scheduler.Stop()
}
