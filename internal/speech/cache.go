package speech

import (
	"context"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/metrics"
	"github.com/curesight/client-go/pkg/logger"
)

// Synth is the synthesis dependency of the service.
type Synth interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// RemoteCache is an optional shared second level for synthesized audio.
type RemoteCache interface {
	GetAudio(ctx context.Context, key string) ([]byte, bool, error)
	SetAudio(ctx context.Context, key string, audio []byte) error
}

// resource is one materialized playable artifact: the synthesized bytes
// written to a temp file the player can open.
type resource struct {
	path string
	size int
}

func (r *resource) release() {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove audio file", zap.String("path", r.path), zap.Error(err))
	}
}

// Service memoizes synthesized speech by (text, language) and plays it. The
// cache is capacity-bounded; evicted entries release their backing file.
// Keys are exact: no normalization of case or whitespace.
type Service struct {
	synth  Synth
	player Player
	remote RemoteCache
	cache  *lru.Cache[string, *resource]
	plays  sync.WaitGroup
}

func NewService(synth Synth, player Player, capacity int, remote RemoteCache) (*Service, error) {
	if capacity <= 0 {
		capacity = 64
	}

	cache, err := lru.NewWithEvict[string, *resource](capacity, func(key string, res *resource) {
		metrics.SpeechCacheEvictions.Inc()
		logger.Debug("Audio resource evicted", zap.String("key", key))
		res.release()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio cache: %w", err)
	}

	return &Service{
		synth:  synth,
		player: player,
		remote: remote,
		cache:  cache,
	}, nil
}

// cacheKey matches the original client's memoization key exactly.
func cacheKey(text, lang string) string {
	return lang + ":::" + text
}

// EnsurePlayed plays the synthesized reading of text, synthesizing it only if
// no resource for this exact (text, lang) pair is cached. The resource is
// stored before playback starts, so a second call reuses it even while the
// first is still playing.
func (s *Service) EnsurePlayed(ctx context.Context, text, lang string) error {
	key := cacheKey(text, lang)

	if res, ok := s.cache.Get(key); ok {
		metrics.SpeechCacheHits.WithLabelValues("local").Inc()
		s.play(key, res)
		return nil
	}
	metrics.SpeechCacheMisses.Inc()

	audio, err := s.fetch(ctx, key, text, lang)
	if err != nil {
		return err
	}

	res, err := materialize(audio)
	if err != nil {
		return err
	}
	s.cache.Add(key, res)

	s.play(key, res)
	return nil
}

func (s *Service) fetch(ctx context.Context, key, text, lang string) ([]byte, error) {
	if s.remote != nil {
		audio, ok, err := s.remote.GetAudio(ctx, key)
		if err != nil {
			logger.Warn("Remote audio cache lookup failed", zap.Error(err))
		} else if ok {
			metrics.SpeechCacheHits.WithLabelValues("remote").Inc()
			return audio, nil
		}
	}

	audio, err := s.synth.Synthesize(ctx, text, lang)
	if err != nil {
		return nil, err
	}

	if s.remote != nil {
		if err := s.remote.SetAudio(ctx, key, audio); err != nil {
			logger.Warn("Remote audio cache store failed", zap.Error(err))
		}
	}
	return audio, nil
}

// play is fire-and-forget: overlapping plays are neither serialized nor
// cancellable, matching the portal's behavior.
func (s *Service) play(key string, res *resource) {
	s.plays.Add(1)
	go func() {
		defer s.plays.Done()
		if err := s.player.Play(context.Background(), res.path); err != nil {
			logger.Warn("Audio playback failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// Wait blocks until every playback started so far has finished. One-shot
// callers use it before exiting; overlapping plays stay unserialized.
func (s *Service) Wait() {
	s.plays.Wait()
}

// Len reports the number of cached resources.
func (s *Service) Len() int {
	return s.cache.Len()
}

// Close releases every cached resource.
func (s *Service) Close() {
	s.cache.Purge()
}

func materialize(audio []byte) (*resource, error) {
	file, err := os.CreateTemp("", "curesight-tts-*.audio")
	if err != nil {
		return nil, fmt.Errorf("failed to materialize audio: %w", err)
	}
	if _, err := file.Write(audio); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to materialize audio: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("failed to materialize audio: %w", err)
	}

	return &resource{path: file.Name(), size: len(audio)}, nil
}
