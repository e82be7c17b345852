// Package storage manages the upload area holding audio clips. A note's
// audioPath is a key inside this area; nothing outside it is ever touched.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/uuid"

	"github.com/Nix177/audio-geo-notes/internal/config"
)

// ClipPrefix is the key prefix under which all uploaded clips live.
const ClipPrefix = "clips/"

// ErrInvalidKey rejects keys that would escape the managed upload area.
var ErrInvalidKey = errors.New("invalid upload key")

type Client struct {
	backend  StorageProvider
	bucket   string
	localDir string
}

func New(cfg *config.Config) *Client {
	var backend StorageProvider
	var bucket, localDir string

	if cfg.Uploads.Provider == "s3" {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Uploads.KeyID, cfg.Uploads.AppKey, ""),
			Endpoint:         aws.String(cfg.Uploads.Endpoint),
			Region:           aws.String(cfg.Uploads.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = NewS3Provider(sess)
		bucket = cfg.Uploads.Bucket
	} else {
		backend = NewLocalProvider(cfg.Uploads.LocalDir)
		localDir = cfg.Uploads.LocalDir
	}

	return &Client{backend: backend, bucket: bucket, localDir: localDir}
}

// NewClient wires an explicit backend; used by tests.
func NewClient(backend StorageProvider, bucket string) *Client {
	return &Client{backend: backend, bucket: bucket}
}

// NewClipKey builds a collision-free key for an uploaded clip.
// kind is "note" or "stream"; ext includes the dot.
func NewClipKey(kind, ext string) string {
	return fmt.Sprintf("%s%s-%d-%s%s", ClipPrefix, kind, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// SaveClip stores an uploaded clip under key. Keys are single-use; a key
// that already resolves to an object is refused rather than overwritten.
func (c *Client) SaveClip(key string, body io.ReadSeeker, contentType string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	taken, err := c.backend.Exists(c.bucket, key)
	if err != nil {
		return fmt.Errorf("check clip key %s: %w", key, err)
	}
	if taken {
		return fmt.Errorf("clip key %s already in use", key)
	}
	return c.backend.Put(c.bucket, key, body, contentType)
}

// OpenClip returns the stored clip for serving.
func (c *Client) OpenClip(key string) (*FileObject, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	return c.backend.Get(c.bucket, key)
}

// Remove deletes a superseded clip, best-effort. Keys pointing outside the
// upload area are refused; deletion failures are logged and swallowed.
func (c *Client) Remove(key string) {
	if !validKey(key) {
		slog.Warn("storage: refusing to remove key outside upload area", "key", key)
		return
	}
	if err := c.backend.Delete(c.bucket, key); err != nil {
		slog.Debug("storage: cleanup failed", "key", key, "error", err)
	}
}

// SweepOrphans removes clips no note references anymore. Returns the number
// of files removed. Errors abort the sweep silently; it runs again next boot.
func (c *Client) SweepOrphans(inUse func(key string) bool) int {
	keys, err := c.backend.List(c.bucket, ClipPrefix)
	if err != nil {
		slog.Warn("storage: orphan sweep skipped", "error", err)
		return 0
	}

	removed := 0
	for _, key := range keys {
		if inUse(key) {
			continue
		}
		if err := c.backend.Delete(c.bucket, key); err != nil {
			slog.Debug("storage: orphan removal failed", "key", key, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("storage: swept orphaned clips", "removed", removed)
	}
	return removed
}

// LocalDir returns the root of the local upload area, empty for S3. The API
// layer uses it to serve /uploads statically.
func (c *Client) LocalDir() string {
	return c.localDir
}

func validKey(key string) bool {
	if !strings.HasPrefix(key, ClipPrefix) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return false
	}
	return !strings.HasSuffix(key, "/")
}
