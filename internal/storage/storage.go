package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog/log"

	"voiceloom/internal/voice"
)

const recordKey = "voiceloom"

// Record is the single persisted aggregate: every voice plus the shared
// council history.
type Record struct {
	Voices         map[string]*voice.Voice `json:"voices"`
	CouncilHistory []voice.Turn            `json:"council_history"`
}

// Storage is the save collaborator invoked after every state-changing
// operation in the core. The aggregate lives in memory; every save pushes it
// into the datastore, whose autosave loop and final flush on Close handle
// disk durability. Voice records reload verbatim on session resume.
type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc

	mu  sync.Mutex
	rec *Record
}

func New(filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, err
	}
	rec := &Record{}
	if _, err := ds.Get(recordKey, rec); err != nil {
		cancel()
		_ = ds.Close()
		return nil, fmt.Errorf("load record: %w", err)
	}
	if rec.Voices == nil {
		rec.Voices = map[string]*voice.Voice{}
	}
	return &Storage{ds: ds, cancel: cancel, rec: rec}, nil
}

// Close stops the autosave loop and flushes the aggregate to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

// SaveVoice persists one mutated voice record.
func (s *Storage) SaveVoice(v *voice.Voice) {
	if v == nil || v.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Voices[v.ID] = v
	s.flush("voice " + v.Name)
}

// SaveCouncilHistory persists the shared council window.
func (s *Storage) SaveCouncilHistory(h []voice.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.CouncilHistory = h
	s.flush("council history")
}

func (s *Storage) flush(what string) {
	if err := s.ds.Set(recordKey, s.rec); err != nil {
		log.Error().Err(err).Str("record", what).Msg("save failed")
	}
}

// LoadVoices returns all persisted voices ordered by creation time then name,
// so the roster order (and outreach tie-breaking) is deterministic.
func (s *Storage) LoadVoices() []*voice.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*voice.Voice, 0, len(s.rec.Voices))
	for _, v := range s.rec.Voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LoadCouncilHistory returns the persisted shared history window.
func (s *Storage) LoadCouncilHistory() []voice.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.CouncilHistory
}
