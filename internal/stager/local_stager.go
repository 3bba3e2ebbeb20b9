// Package stager validates inbound audio and places it on local disk for inference.
package stager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"sevoc/internal/config"
	"sevoc/internal/domain"
	"sevoc/internal/port"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalStager implements port.FileStager on the local filesystem.
type LocalStager struct {
	cfg     *config.UploadConfig
	allowed map[string]struct{}
	log     *zap.Logger
}

// NewLocalStager creates a stager and makes sure the upload directory exists.
func NewLocalStager(cfg *config.UploadConfig, log *zap.Logger) (*LocalStager, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &LocalStager{
		cfg:     cfg,
		allowed: allowed,
		log:     log,
	}, nil
}

var _ port.FileStager = (*LocalStager)(nil)

func (s *LocalStager) Stage(ctx context.Context, requestID string, req domain.EvaluationRequest) (*domain.StagedAudioFile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Reference != nil && HasTraversal(req.Reference.Filename) {
		return nil, domain.ErrPathTraversal
	}

	ext, err := s.extension(req.Filename())
	if err != nil {
		return nil, err
	}

	if req.Upload != nil {
		return s.stageUpload(ctx, requestID, ext, req.Upload)
	}
	return s.resolveReference(ext, req.Reference)
}

// Release removes ephemeral staged files. Server references are left untouched.
func (s *LocalStager) Release(staged *domain.StagedAudioFile) error {
	if staged == nil || !staged.Ephemeral {
		return nil
	}
	if err := os.Remove(staged.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing staged file: %w", err)
	}
	return nil
}

func (s *LocalStager) extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := s.allowed[ext]; !ok {
		return "", fmt.Errorf("%w: %q; allowed: %s", domain.ErrUnsupportedFileType, ext, strings.Join(s.cfg.AllowedExtensions, ", "))
	}
	return ext, nil
}

func (s *LocalStager) stageUpload(ctx context.Context, requestID, ext string, upload *domain.UploadedAudio) (*domain.StagedAudioFile, error) {
	maxBytes := s.cfg.MaxFileSizeBytes()
	if upload.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if upload.Content == nil {
		return nil, domain.ErrMissingAudio
	}

	pattern := fmt.Sprintf("%d_%s_*_%s", time.Now().Unix(), requestID, SanitizeFilename(upload.Filename, ext))
	f, err := os.CreateTemp(s.cfg.Dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating staged file: %w", err)
	}
	staged := &domain.StagedAudioFile{Path: f.Name(), Extension: ext, Ephemeral: true}

	// One byte past the limit is enough to detect an oversized body.
	written, copyErr := io.Copy(f, io.LimitReader(upload.Content, maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		s.discard(staged)
		return nil, fmt.Errorf("writing staged file: %w", copyErr)
	case closeErr != nil:
		s.discard(staged)
		return nil, fmt.Errorf("closing staged file: %w", closeErr)
	case written > maxBytes:
		s.discard(staged)
		return nil, domain.ErrFileTooLarge
	case ctx.Err() != nil:
		s.discard(staged)
		return nil, ctx.Err()
	}
	staged.SizeBytes = written

	if mt, err := mimetype.DetectFile(staged.Path); err == nil {
		staged.ContentType = mt.String()
		if s.cfg.SniffContent && !isAudio(mt) {
			s.discard(staged)
			return nil, fmt.Errorf("%w: content detected as %s", domain.ErrUnsupportedFileType, mt.String())
		}
	}

	s.log.Debug("upload staged",
		zap.String("request_id", requestID),
		zap.String("path", staged.Path),
		zap.Int64("size_bytes", staged.SizeBytes),
		zap.String("content_type", staged.ContentType))
	return staged, nil
}

func (s *LocalStager) resolveReference(ext string, ref *domain.ServerFileReference) (*domain.StagedAudioFile, error) {
	name := ref.Filename
	if HasTraversal(name) {
		return nil, domain.ErrPathTraversal
	}

	root, err := filepath.Abs(s.cfg.ServerDir)
	if err != nil {
		return nil, fmt.Errorf("resolving server dir: %w", err)
	}
	path := filepath.Join(root, filepath.FromSlash(name))
	if !within(root, path) {
		return nil, domain.ErrPathTraversal
	}

	// Symlinks may still point outside the server directory.
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, domain.ErrFileNotFound
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, domain.ErrFileNotFound
	}
	if !within(realRoot, realPath) {
		return nil, domain.ErrPathTraversal
	}

	info, err := os.Stat(realPath)
	if err != nil || !info.Mode().IsRegular() {
		return nil, domain.ErrFileNotFound
	}

	return &domain.StagedAudioFile{
		Path:      path,
		SizeBytes: info.Size(),
		Extension: ext,
		Ephemeral: false,
	}, nil
}

func (s *LocalStager) discard(staged *domain.StagedAudioFile) {
	if err := s.Release(staged); err != nil {
		s.log.Warn("failed to discard staged file", zap.String("path", staged.Path), zap.Error(err))
	}
}

// HasTraversal reports whether a client-supplied reference could leave its base directory.
func HasTraversal(name string) bool {
	if name == "" {
		return false
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.VolumeName(name) != "" {
		return true
	}
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// SanitizeFilename reduces a client filename to a safe base name ending in ext.
func SanitizeFilename(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "audio"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	return base + "." + ext
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func isAudio(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || m.Is("application/ogg") {
			return true
		}
	}
	return false
}
