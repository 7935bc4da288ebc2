package registry

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
	"github.com/cratesweep/cratesweep/pkg/utils"
)

const manifestFile = "Cargo.toml"

// Resolver selects a version from the index, then downloads and unpacks it
type Resolver struct {
	index      *Index
	downloader *Downloader
	sourceRoot string
	logger     logger.Logger
}

// NewResolver creates a resolver for the run described by cfg
func NewResolver(cfg types.RunConfig, log logger.Logger, opts ...DownloaderOption) *Resolver {
	layout := types.NewLayout(cfg.OutputDir)
	return &Resolver{
		index:      NewIndex(layout.IndexDir()),
		downloader: NewDownloader(cfg.DownloadURL, log, opts...),
		sourceRoot: layout.SourceDir(),
		logger:     log,
	}
}

// Resolve returns an unpacked source tree for pkg. Errors wrap ErrNotFound
// or ErrDownloadFailed.
func (r *Resolver) Resolve(ctx context.Context, pkg types.PackageID) (*types.ResolvedPackage, error) {
	entry, err := r.index.Select(pkg)
	if err != nil {
		return nil, err
	}

	resolved := &types.ResolvedPackage{ID: pkg, Version: entry.Version}
	topDir := resolved.String()
	dir := filepath.Join(r.sourceRoot, topDir)

	if Unpacked(dir) {
		r.logger.Debug("Using unpacked sources", logger.WithField("dir", dir))
	} else {
		r.logger.Info(fmt.Sprintf("Downloading %s", topDir))
		data, err := r.downloader.Fetch(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("crate `%s` %w: %v", pkg, ErrDownloadFailed, err)
		}
		if dir, err = Unpack(data, r.sourceRoot, topDir); err != nil {
			return nil, fmt.Errorf("crate `%s` %w: unpack: %v", pkg, ErrDownloadFailed, err)
		}
	}

	resolved.SourceDir = dir
	resolved.ManifestPath = filepath.Join(dir, manifestFile)
	if !utils.FileExists(resolved.ManifestPath) {
		return nil, fmt.Errorf("crate `%s` %w: archive has no %s", pkg, ErrDownloadFailed, manifestFile)
	}
	return resolved, nil
}
