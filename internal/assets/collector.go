package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appErr "ojboot/pkg/errors"
	"ojboot/pkg/utils/logger"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// compressible lists extensions that get a precompressed .gz companion,
// matching what the application serves as static text assets.
var compressible = map[string]bool{
	".css":  true,
	".js":   true,
	".html": true,
	".svg":  true,
	".txt":  true,
	".json": true,
	".map":  true,
	".xml":  true,
}

// Collector copies static asset trees into the shared static root. The
// copy is idempotent: a destination file whose size and mtime match the
// source is left alone, so repeated container starts converge quickly.
type Collector struct {
	SourceDirs []string
	Root       string

	// Compress controls writing .gz companions for compressible types.
	Compress bool
}

// Summary reports what a collection run did.
type Summary struct {
	Copied     int
	Skipped    int
	Compressed int
}

// Collect walks every source tree and mirrors it under Root. Nothing
// outside Root is ever written.
func (c *Collector) Collect(ctx context.Context) (Summary, error) {
	var summary Summary

	if c.Root == "" {
		return summary, appErr.New(appErr.AssetCollectFailed).WithMessage("static root is empty")
	}
	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return summary, appErr.Wrapf(err, appErr.AssetCollectFailed, "create static root: %v", err)
	}

	for _, src := range c.SourceDirs {
		if err := c.collectTree(ctx, src, &summary); err != nil {
			return summary, err
		}
	}

	logger.Info(ctx, "static assets collected",
		zap.Int("copied", summary.Copied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("compressed", summary.Compressed),
		zap.String("root", c.Root),
	)
	return summary, nil
}

func (c *Collector) collectTree(ctx context.Context, src string, summary *Summary) error {
	info, err := os.Stat(src)
	if err != nil {
		return appErr.Wrapf(err, appErr.AssetCollectFailed, "stat source %s: %v", src, err)
	}
	if !info.IsDir() {
		return appErr.Newf(appErr.AssetCollectFailed, "source %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetCollectFailed, "walk %s: %v", path, err)
		}
		if err := ctx.Err(); err != nil {
			return appErr.Wrapf(err, appErr.AssetCollectFailed, "asset collection canceled: %v", err)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetCollectFailed, "relativize %s: %v", path, err)
		}
		if rel == "." {
			return nil
		}
		if strings.HasPrefix(rel, "..") {
			return appErr.Newf(appErr.AssetCollectFailed, "path %s escapes source tree", path)
		}

		dest := filepath.Join(c.Root, rel)
		if d.IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return appErr.Wrapf(err, appErr.AssetCollectFailed, "create dir %s: %v", dest, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks and specials are not assets.
			return nil
		}

		srcInfo, err := d.Info()
		if err != nil {
			return appErr.Wrapf(err, appErr.AssetCollectFailed, "stat %s: %v", path, err)
		}

		changed, err := c.copyFile(path, dest, srcInfo)
		if err != nil {
			return err
		}
		if changed {
			summary.Copied++
		} else {
			summary.Skipped++
		}

		if c.Compress && compressible[strings.ToLower(filepath.Ext(dest))] {
			wrote, err := c.compressFile(dest, changed)
			if err != nil {
				return err
			}
			if wrote {
				summary.Compressed++
			}
		}
		return nil
	})
}

// copyFile copies src to dest unless dest already matches size and mtime.
// Returns whether the destination was (re)written.
func (c *Collector) copyFile(src, dest string, srcInfo os.FileInfo) (bool, error) {
	if destInfo, err := os.Stat(dest); err == nil {
		if destInfo.Size() == srcInfo.Size() && destInfo.ModTime().Equal(srcInfo.ModTime()) {
			return false, nil
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "open %s: %v", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "create %s: %v", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "copy %s: %v", dest, err)
	}
	if err := out.Close(); err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "close %s: %v", dest, err)
	}

	// Carry the source mtime so the next run can skip unchanged files.
	if err := os.Chtimes(dest, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "set mtime %s: %v", dest, err)
	}
	return true, nil
}

// compressFile writes dest.gz when the asset was rewritten or the
// companion is missing.
func (c *Collector) compressFile(dest string, changed bool) (bool, error) {
	gzPath := dest + ".gz"
	if !changed {
		if _, err := os.Stat(gzPath); err == nil {
			return false, nil
		}
	}

	in, err := os.Open(dest)
	if err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "open %s: %v", dest, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(gzPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "create %s: %v", gzPath, err)
	}

	gw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		_ = out.Close()
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "gzip writer: %v", err)
	}
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "compress %s: %v", dest, err)
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "finish %s: %v", gzPath, err)
	}
	if err := out.Close(); err != nil {
		return false, appErr.Wrapf(err, appErr.AssetCollectFailed, "close %s: %v", gzPath, err)
	}
	return true, nil
}

// String implements fmt.Stringer for log-friendly summaries.
func (s Summary) String() string {
	return fmt.Sprintf("copied=%d skipped=%d compressed=%d", s.Copied, s.Skipped, s.Compressed)
}
