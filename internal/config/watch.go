package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

// settleDelay is how long the rules file must stay quiet before a reload.
// Writers truncate before writing, so the first event often sees an empty
// file.
const settleDelay = 200 * time.Millisecond

var errEmptyRules = errors.New("rules file is empty")

// RulesSource holds the current draft rules and can follow edits to the
// rules file. Drafts read Current once at start, so a reload never changes
// a running draft.
type RulesSource struct {
	path    string
	current atomic.Pointer[engine.Rules]
}

func NewRulesSource(path string) (*RulesSource, error) {
	r, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	s := &RulesSource{path: path}
	s.current.Store(&r)
	return s, nil
}

func (s *RulesSource) Current() engine.Rules { return *s.current.Load() }

// Watch reloads the rules whenever the file changes, until ctx is done. A
// file that fails to parse or validate is logged and the previous rules
// stay in effect.
func (s *RulesSource) Watch(ctx context.Context, logger *zap.Logger) (err error) {
	if s.path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch rules file: %w", err)
	}
	target := filepath.Clean(s.path)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settle = time.After(settleDelay)
		case <-settle:
			settle = nil
			s.reload(logger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("rules watcher error", zap.Error(werr))
		}
	}
}

func (s *RulesSource) reload(logger *zap.Logger) {
	r, err := s.read()
	if err != nil {
		logger.Warn("rules reload rejected, keeping previous rules", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.current.Store(&r)
	logger.Info("rules reloaded", zap.String("path", s.path))
}

func (s *RulesSource) read() (engine.Rules, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return engine.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return engine.Rules{}, errEmptyRules
	}
	return ParseRules(data)
}
