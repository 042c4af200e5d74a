package file

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/filedrop/filedrop/internal/checksum"
	"github.com/filedrop/filedrop/internal/counter"
	"github.com/filedrop/filedrop/internal/imagemeta"
	"github.com/filedrop/filedrop/internal/metrics"
	"github.com/filedrop/filedrop/internal/mirror"
	"github.com/filedrop/filedrop/internal/notify"
	"github.com/filedrop/filedrop/internal/object"
)

// createAttempts bounds re-allocation after a lost directory-creation race.
const createAttempts = 5

type thumbnailer interface {
	Generate(ctx context.Context, videoPath, outPath string) error
}

type notifier interface {
	Notify(event notify.Event, text string)
}

// Service orchestrates the object store, derived-metadata caches, download
// ledger, thumbnailer, webhook, and the optional mirror.
type Service struct {
	store   *object.Store
	sums    *checksum.Cache
	counts  *counter.Ledger
	thumbs  thumbnailer
	hook    notifier
	replica *mirror.Mirror
	baseURL string
	log     *zap.Logger

	bg sync.WaitGroup
}

// NewService wires the collaborators. replica may be nil when mirroring is
// not configured.
func NewService(store *object.Store, sums *checksum.Cache, counts *counter.Ledger, thumbs thumbnailer, hook notifier, replica *mirror.Mirror, baseURL string, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		sums:    sums,
		counts:  counts,
		thumbs:  thumbs,
		hook:    hook,
		replica: replica,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// URL returns the public page URL for a code.
func (s *Service) URL(code string) string {
	return s.baseURL + "/files/" + code
}

// Wait joins all detached tasks (thumbnails, mirror copies). Used by
// shutdown and by tests that need the side effects to have settled.
func (s *Service) Wait() { s.bg.Wait() }

// Upload stores the multipart file under a freshly allocated code. Thumbnail
// generation and mirroring run detached; their failures never fail the
// upload.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (object.Handle, error) {
	if fileHeader == nil {
		return object.Handle{}, fmt.Errorf("missing file payload")
	}

	name := fileHeader.Filename
	if strings.TrimSpace(name) == "" {
		name = time.Now().Format("2006-01-02_15-04-05")
	}

	var handle object.Handle
	for attempt := 0; ; attempt++ {
		code, err := s.store.Allocate(name)
		if err != nil {
			return object.Handle{}, err
		}

		f, err := fileHeader.Open()
		if err != nil {
			return object.Handle{}, fmt.Errorf("open upload file: %w", err)
		}
		handle, err = s.store.Create(code, name, f)
		f.Close()
		if err == nil {
			break
		}
		if err == object.ErrCodeTaken && attempt < createAttempts {
			continue
		}
		return object.Handle{}, err
	}

	metrics.Uploads.Inc()

	if object.IsVideo(handle.ContentName) {
		s.detach(func() {
			out := filepath.Join(handle.Dir, object.ThumbnailName)
			if err := s.thumbs.Generate(context.Background(), handle.ContentPath, out); err != nil {
				metrics.ThumbnailFailures.Inc()
				s.log.Warn("thumbnail generation failed",
					zap.String("code", handle.Code), zap.Error(err))
			}
		})
	}

	s.mirrorPut(handle)
	s.hook.Notify(notify.EventUpload, s.URL(handle.Code))

	return handle, nil
}

// Resolve looks a code up in the store.
func (s *Service) Resolve(code string) (object.Handle, error) {
	return s.store.Get(code)
}

// Delete removes the object and purges its ledger and cache entries.
func (s *Service) Delete(code string) error {
	handle, err := s.store.Get(code)
	if err != nil {
		return err
	}
	if err := s.store.Delete(code); err != nil {
		return err
	}

	metrics.Deletes.Inc()

	if err := s.counts.Forget(code); err != nil {
		s.log.Warn("purge counter entry", zap.String("code", code), zap.Error(err))
	}
	if err := s.sums.ForgetDir(handle.Dir); err != nil {
		s.log.Warn("purge checksum entries", zap.String("code", code), zap.Error(err))
	}

	s.mirrorRemove(code, handle.ContentName)
	s.hook.Notify(notify.EventDelete, code)
	return nil
}

// Rename gives the object a new filename (and possibly a new code, when the
// extension changes). The download count follows the object; the checksum
// entry for the old path is dropped and recomputed on next access.
func (s *Service) Rename(code, newName string) (object.Handle, error) {
	old, err := s.store.Get(code)
	if err != nil {
		return object.Handle{}, err
	}

	newCode, err := s.store.Rename(code, newName)
	if err != nil {
		return object.Handle{}, err
	}

	if newCode != code {
		if err := s.counts.Migrate(code, newCode); err != nil {
			s.log.Warn("migrate counter entry", zap.String("code", code), zap.Error(err))
		}
	}
	if err := s.sums.ForgetDir(old.Dir); err != nil {
		s.log.Warn("purge checksum entries", zap.String("code", code), zap.Error(err))
	}

	handle, err := s.store.Get(newCode)
	if err != nil {
		return object.Handle{}, err
	}

	s.mirrorRemove(code, old.ContentName)
	s.mirrorPut(handle)
	s.hook.Notify(notify.EventRename, fmt.Sprintf("Name: %s -> %s\nCode: %s -> %s\nURL: %s",
		old.ContentName, handle.ContentName, code, newCode, s.URL(newCode)))

	return handle, nil
}

// RecordDownload increments and returns the download count for code.
func (s *Service) RecordDownload(code string) (int, error) {
	count, err := s.counts.Increment(code)
	if err != nil {
		return 0, err
	}
	metrics.Downloads.Inc()
	return count, nil
}

// Info assembles the public description of a resolved object.
func (s *Service) Info(handle object.Handle) (Info, error) {
	stat, err := os.Stat(handle.ContentPath)
	if err != nil {
		return Info{}, fmt.Errorf("stat content file: %w", err)
	}

	digest, err := s.sums.Sum(handle.ContentPath)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Code:          handle.Code,
		URL:           s.URL(handle.Code),
		RawName:       handle.ContentName,
		Type:          strings.TrimPrefix(strings.ToLower(filepath.Ext(handle.Code)), "."),
		Size:          humanize.Bytes(uint64(stat.Size())),
		RawSize:       stat.Size(),
		Date:          stat.ModTime().Format("2006-01-02 15:04:05"),
		UnixDate:      stat.ModTime().UnixMilli(),
		Ago:           humanize.Time(stat.ModTime()),
		DownloadCount: s.counts.Read(handle.Code),
		Checksum:      digest,
	}

	if w, h, ok := imagemeta.Dimensions(handle.ContentPath); ok {
		info.Width = w
		info.Height = h
	}
	if handle.HasThumbnail {
		info.Thumbnail = s.baseURL + "/api/v1/thumbnail/" + handle.Code
	}

	return info, nil
}

// List returns Info for every stored object. Objects that fail to resolve
// are logged and skipped so one broken directory cannot hide the rest.
func (s *Service) List() ([]Info, error) {
	handles, err := s.store.List()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(handles))
	for _, handle := range handles {
		info, err := s.Info(handle)
		if err != nil {
			s.log.Warn("skipping unreadable object",
				zap.String("code", handle.Code), zap.Error(err))
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Search returns objects whose code or original name contains param
// (case-sensitive substring). An empty result is not an error here; the
// handler turns it into a 404.
func (s *Service) Search(param string) ([]SearchResult, error) {
	infos, err := s.List()
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for _, info := range infos {
		isCode := strings.Contains(info.Code, param)
		isRawName := strings.Contains(info.RawName, param)
		if isCode || isRawName {
			results = append(results, SearchResult{Info: info, IsCode: isCode, IsRawName: isRawName})
		}
	}
	return results, nil
}

func (s *Service) detach(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn()
	}()
}

func (s *Service) mirrorPut(handle object.Handle) {
	if s.replica == nil {
		return
	}
	s.detach(func() {
		if err := s.replica.Put(context.Background(), handle.Code, handle.ContentName, handle.ContentPath); err != nil {
			s.log.Warn("mirror upload failed", zap.String("code", handle.Code), zap.Error(err))
		}
	})
}

func (s *Service) mirrorRemove(code, contentName string) {
	if s.replica == nil {
		return
	}
	s.detach(func() {
		if err := s.replica.Remove(context.Background(), code, contentName); err != nil {
			s.log.Warn("mirror remove failed", zap.String("code", code), zap.Error(err))
		}
	})
}
