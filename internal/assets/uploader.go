package assets

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	appErr "ojboot/pkg/errors"
	"ojboot/pkg/utils/logger"

	"go.uber.org/zap"
)

// ObjectStore is the subset of object storage the uploader needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
}

// Uploader mirrors the collected static root into an object-store bucket
// so a CDN or the web tier can serve assets without touching the shared
// volume.
type Uploader struct {
	Store  ObjectStore
	Bucket string
}

// Mirror uploads every regular file under root, keyed by its path relative
// to root with forward slashes.
func (u *Uploader) Mirror(ctx context.Context, root string) (int, error) {
	if u.Bucket == "" {
		return 0, appErr.New(appErr.AssetUploadFailed).WithMessage("bucket is empty")
	}
	if err := u.Store.EnsureBucket(ctx, u.Bucket); err != nil {
		return 0, appErr.Wrapf(err, appErr.AssetUploadFailed, "ensure bucket %s: %v", u.Bucket, err)
	}

	uploaded := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetUploadFailed, "walk %s: %v", path, err)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return appErr.Wrapf(err, appErr.AssetUploadFailed, "asset upload canceled: %v", err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetUploadFailed, "relativize %s: %v", path, err)
		}
		key := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetUploadFailed, "stat %s: %v", path, err)
		}

		file, err := os.Open(path)
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetUploadFailed, "open %s: %v", path, err)
		}
		defer func() { _ = file.Close() }()

		if err := u.Store.PutObject(ctx, u.Bucket, key, file, info.Size(), contentTypeFor(key)); err != nil {
			return appErr.Wrapf(err, appErr.AssetUploadFailed, "upload %s: %v", key, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	logger.Info(ctx, "static assets mirrored to object storage",
		zap.Int("uploaded", uploaded),
		zap.String("bucket", u.Bucket),
	)
	return uploaded, nil
}

func contentTypeFor(key string) string {
	name := key
	if strings.HasSuffix(name, ".gz") {
		// Precompressed companions keep the original content type.
		name = strings.TrimSuffix(name, ".gz")
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
