package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/storage"
)

const (
	backupLatestKey   = "latest.json"
	backupDailyPrefix = "daily/"
)

// BackupStore holds off-site snapshot copies.
type BackupStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	CleanupOlderThan(ctx context.Context, prefix string, ttl time.Duration) ([]string, error)
}

// BackupOptions configures retention and download links.
type BackupOptions struct {
	Retention time.Duration
	// DownloadPath is the route that serves signed downloads.
	DownloadPath string
}

// BackupService copies saved snapshots to a backup store.
type BackupService struct {
	store  BackupStore
	signer *storage.SignedURLSigner
	opts   BackupOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService constructs the service.
func NewBackupService(store BackupStore, signer *storage.SignedURLSigner, opts BackupOptions, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Retention <= 0 {
		opts.Retention = 30 * 24 * time.Hour
	}
	return &BackupService{
		store:  store,
		signer: signer,
		opts:   opts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Capture writes latest.json and the copy of the day.
func (s *BackupService) Capture(ctx context.Context, data models.ScheduleData) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
	}
	if err := s.store.Put(ctx, backupLatestKey, payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write latest backup")
	}
	daily := backupDailyPrefix + s.now().Format("2006-01-02") + ".json"
	if err := s.store.Put(ctx, daily, payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write daily backup")
	}
	return nil
}

// AfterSave is the autosave hook; failures are logged and never block saving.
func (s *BackupService) AfterSave(ctx context.Context, data models.ScheduleData, result SaveResult) {
	if err := s.Capture(ctx, data); err != nil {
		s.logger.Warn("off-site backup failed", zap.Int64("version", result.Version), zap.Error(err))
		return
	}
	s.logger.Debug("off-site backup written", zap.Int64("version", result.Version), zap.Int("records", result.RecordCount))
}

// List returns stored copies newest first with signed download links.
func (s *BackupService) List(ctx context.Context) ([]models.BackupObject, error) {
	objects, err := s.store.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list backups")
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	out := make([]models.BackupObject, 0, len(objects))
	for _, obj := range objects {
		item := models.BackupObject{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified}
		if s.signer != nil {
			token, expiresAt, err := s.signer.Sign(obj.Key)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign backup link")
			}
			item.DownloadURL = strings.TrimRight(s.opts.DownloadPath, "/") + "?token=" + url.QueryEscape(token)
			item.ExpiresAt = &expiresAt
		}
		out = append(out, item)
	}
	return out, nil
}

// Open resolves a signed token to the stored copy.
func (s *BackupService) Open(ctx context.Context, token string) (string, []byte, error) {
	if s.signer == nil {
		return "", nil, appErrors.Clone(appErrors.ErrUnavailable, "backup downloads are disabled")
	}
	key, _, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return "", nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link expired")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	body, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", nil, appErrors.Clone(appErrors.ErrNotFound, "backup not found")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read backup")
	}
	return key, body, nil
}

// Cleanup prunes daily copies past retention. latest.json is always kept.
func (s *BackupService) Cleanup(ctx context.Context) ([]string, error) {
	removed, err := s.store.CleanupOlderThan(ctx, backupDailyPrefix, s.opts.Retention)
	if err != nil {
		return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune backups")
	}
	if len(removed) > 0 {
		s.logger.Info("expired backups removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

// RunCleanup prunes on every tick until ctx ends.
func (s *BackupService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Cleanup(ctx); err != nil {
				s.logger.Warn("backup cleanup failed", zap.Error(err))
			}
		}
	}
}
