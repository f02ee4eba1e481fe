package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/pkg/index"
	"portfolio-chat-be/pkg/loader"
)

type IIndexService interface {
	// Rebuild reloads the data directory and re-embeds everything. Only one
	// rebuild runs at a time; concurrent calls fail fast.
	Rebuild(ctx context.Context) (*index.Summary, error)

	// Sources describes what the live index currently holds.
	Sources() *index.Summary
}

type indexService struct {
	index    *index.Index
	dataDir  string
	building sync.Mutex
	inFlight bool
	log      logger.ILogger
}

func NewIndexService(ix *index.Index, dataDir string, log logger.ILogger) IIndexService {
	return &indexService{index: ix, dataDir: dataDir, log: log}
}

func (s *indexService) Rebuild(_ context.Context) (*index.Summary, error) {
	s.building.Lock()
	if s.inFlight {
		s.building.Unlock()
		return nil, fmt.Errorf("reindex already in progress")
	}
	s.inFlight = true
	s.building.Unlock()

	defer func() {
		s.building.Lock()
		s.inFlight = false
		s.building.Unlock()
	}()

	started := time.Now()
	chunks, err := loader.BuildFromDataDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("load data dir: %w", err)
	}

	summary, err := s.index.Build(chunks)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	s.log.Info("IndexService", "reindex complete", map[string]interface{}{
		"total_chunks": summary.TotalChunks,
		"elapsed_ms":   time.Since(started).Milliseconds(),
	})
	return summary, nil
}

func (s *indexService) Sources() *index.Summary {
	return s.index.Summary()
}
