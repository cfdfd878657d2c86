package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

// Reloader is the write side of content.Cache.
type Reloader interface {
	Reload(ctx context.Context, kinds ...model.Kind) ([]content.ReloadResult, error)
}

// Reload outcome per kind.
const (
	ReloadOK     = "reloaded"
	ReloadFailed = "failed"
)

// KindReport is the outcome of reloading one kind. It never carries file
// paths, URLs or DSNs; Reason is the LoadError category only.
type KindReport struct {
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Record     *int   `json:"record,omitempty"`
	Generation string `json:"generation"`
	Items      int    `json:"items"`
}

// ReloadReport lists one KindReport per requested kind.
type ReloadReport struct {
	Kinds []KindReport `json:"kinds"`
}

// Failed reports whether any kind failed to reload.
func (r ReloadReport) Failed() bool {
	for _, k := range r.Kinds {
		if k.Status == ReloadFailed {
			return true
		}
	}
	return false
}

// ReloadService runs cache reloads and logs their outcome. It is shared by
// the admin endpoint, SIGHUP and the periodic refresher.
type ReloadService struct {
	cache  Reloader
	logger *slog.Logger
}

// NewReloadService creates a ReloadService.
func NewReloadService(cache Reloader, logger *slog.Logger) *ReloadService {
	return &ReloadService{cache: cache, logger: logger}
}

// Reload reloads the given kinds (all when none are given).
//
// When the request itself is invalid (unknown kind, cache not initialized)
// the report is empty and the error is an *apperror.AppError. When some kinds
// fail to load, the report describes every kind and the error joins the
// *content.LoadError values.
func (s *ReloadService) Reload(ctx context.Context, trigger string, kinds ...model.Kind) (ReloadReport, error) {
	start := time.Now()
	results, err := s.cache.Reload(ctx, kinds...)
	if err != nil && results == nil {
		s.logger.Warn("content reload rejected",
			slog.String("trigger", trigger),
			slog.String("error", err.Error()),
		)
		return ReloadReport{}, err
	}

	report := ReloadReport{Kinds: make([]KindReport, 0, len(results))}
	for _, res := range results {
		kr := KindReport{
			Kind:       string(res.Kind),
			Status:     ReloadOK,
			Generation: res.Generation,
			Items:      res.Items,
		}

		if res.Err != nil {
			kr.Status = ReloadFailed
			var le *content.LoadError
			if errors.As(res.Err, &le) {
				kr.Reason = string(le.Reason)
				if le.Record >= 0 {
					rec := le.Record
					kr.Record = &rec
				}
			}
			s.logger.Error("content reload failed, keeping previous snapshot",
				slog.String("trigger", trigger),
				slog.String("kind", kr.Kind),
				slog.String("reason", kr.Reason),
				slog.String("generation", res.Generation),
				slog.String("error", res.Err.Error()),
			)
		} else {
			s.logger.Info("content reloaded",
				slog.String("trigger", trigger),
				slog.String("kind", kr.Kind),
				slog.String("generation", res.Generation),
				slog.String("previous", res.Previous),
				slog.Int("items", res.Items),
			)
		}
		report.Kinds = append(report.Kinds, kr)
	}

	s.logger.Debug("content reload finished",
		slog.String("trigger", trigger),
		slog.Duration("duration", time.Since(start)),
	)
	return report, err
}
