package registry

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
	"github.com/cratesweep/cratesweep/pkg/utils"
)

// Mirror maintains the local git checkout of the registry index
type Mirror struct {
	url        string
	layout     types.Layout
	skipUpdate bool
	git        string
	logger     logger.Logger
}

// NewMirror creates an index mirror for the run described by cfg
func NewMirror(cfg types.RunConfig, log logger.Logger) *Mirror {
	return &Mirror{
		url:        cfg.IndexURL,
		layout:     types.NewLayout(cfg.OutputDir),
		skipUpdate: cfg.SkipIndexUpdate,
		git:        "git",
		logger:     log,
	}
}

// Sync clones the index on first use and fast-forwards it afterwards.
// A fresh clone lands in a scratch directory and is renamed into place so an
// interrupted clone is never mistaken for an index.
func (m *Mirror) Sync(ctx context.Context) error {
	index := m.layout.IndexDir()

	if !utils.DirectoryExists(index) {
		tmp := m.layout.IndexTmpDir()
		m.logger.Info("Initializing registry index", logger.WithField("url", m.url))
		if err := os.RemoveAll(tmp); err != nil {
			return fmt.Errorf("failed to remove stale clone: %w", err)
		}
		if err := m.run(ctx, "", "clone", "--depth", "1", m.url, tmp); err != nil {
			return err
		}
		if err := os.Rename(tmp, index); err != nil {
			return fmt.Errorf("failed to move index into place: %w", err)
		}
		return nil
	}

	if m.skipUpdate {
		m.logger.Debug("Skipping index update")
		return nil
	}

	m.logger.Info("Updating registry index")
	if err := m.run(ctx, index, "fetch", "--depth", "1", "origin"); err != nil {
		return err
	}
	return m.run(ctx, index, "reset", "--hard", "FETCH_HEAD")
}

func (m *Mirror) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, m.git, args...)
	cmd.Dir = dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	m.logger.Debug("Executing git", logger.WithField("args", strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s failed: %w\n%s", args[0], err, strings.TrimSpace(output.String()))
	}
	return nil
}
