package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrInvalidAssetURL is returned when an object key cannot be derived from an image URL.
	ErrInvalidAssetURL = errors.New("cannot parse asset id from url")
	// ErrAssetsDisabled is returned when no image host is configured.
	ErrAssetsDisabled = errors.New("image hosting is not configured")
)

// ObjectStore is the remote media host the asset service writes to.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	RemoveObject(ctx context.Context, bucket, key string) error
}

// AssetConfig describes where uploaded images live and how they are addressed.
type AssetConfig struct {
	Bucket string
	Folder string
	// PublicURL is the base URL objects are served from, without the bucket.
	PublicURL string
}

// AssetService uploads product images to the media host and deletes them by URL.
type AssetService struct {
	store ObjectStore
	cfg   AssetConfig
	now   func() time.Time
}

// NewAssetService creates a new AssetService. A nil store disables uploads.
func NewAssetService(store ObjectStore, cfg AssetConfig) *AssetService {
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.Folder = strings.Trim(cfg.Folder, "/")
	return &AssetService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Upload stores the file and returns the stable public URL of the new object.
func (s *AssetService) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.store == nil {
		return "", ErrAssetsDisabled
	}
	key := s.objectKey(filename)
	if err := s.store.PutObject(ctx, s.cfg.Bucket, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

// Delete removes the object addressed by rawURL.
func (s *AssetService) Delete(ctx context.Context, rawURL string) error {
	if s.store == nil {
		return ErrAssetsDisabled
	}
	key, err := s.ObjectKey(rawURL)
	if err != nil {
		return err
	}
	if err := s.store.RemoveObject(ctx, s.cfg.Bucket, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// ObjectKey extracts the object key from a public URL produced by Upload.
func (s *AssetService) ObjectKey(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrInvalidAssetURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "", ErrInvalidAssetURL
	}
	p := u.Path
	if base, err := url.Parse(s.cfg.PublicURL); err == nil && base.Path != "" {
		p = strings.TrimPrefix(p, strings.TrimRight(base.Path, "/"))
	}
	prefix := "/" + s.cfg.Bucket + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", ErrInvalidAssetURL
	}
	key := strings.TrimPrefix(p, prefix)
	if key == "" || strings.HasSuffix(key, "/") || strings.Contains(key, "..") {
		return "", ErrInvalidAssetURL
	}
	return key, nil
}

// objectKey names an upload <folder>/<unix millis>-<base name><ext>.
func (s *AssetService) objectKey(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, base)
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "/" {
		name = "image"
	}
	id := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), name, ext)
	if s.cfg.Folder == "" {
		return id
	}
	return s.cfg.Folder + "/" + id
}

func (s *AssetService) publicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	return fmt.Sprintf("%s/%s/%s", s.cfg.PublicURL, s.cfg.Bucket, escaped)
}
