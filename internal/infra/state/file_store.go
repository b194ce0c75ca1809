package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"telegram-offers-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var (
	_ repository.StateRepository    = (*StateFile)(nil)
	_ repository.TaxonomyRepository = (*TaxonomyFile)(nil)
)

// StateFile persists the seen-set/price-map state as one human-readable JSON
// document. The file is safe to be absent on first run. Writes go through a
// temp file and rename so a crash mid-write never leaves a torn document.
type StateFile struct {
	path string
	log  *zerolog.Logger
}

func NewStateFile(path string, logger *zerolog.Logger) *StateFile {
	compLog := logger.With().Str("component", "StateFile").Logger()
	return &StateFile{path: path, log: &compLog}
}

func (s *StateFile) Load(ctx context.Context) (*repository.BotState, error) {
	st := repository.NewBotState()
	if err := readJSON(s.path, st); err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("path", s.path).Msg("no state file yet, starting empty")
			return repository.NewBotState(), nil
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	if st.LastPrices == nil {
		st.LastPrices = make(map[string]string)
	}
	return st, nil
}

func (s *StateFile) Save(ctx context.Context, st *repository.BotState) error {
	if err := writeJSON(s.path, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// TaxonomyFile persists the category/objective sets, same discipline as StateFile.
type TaxonomyFile struct {
	path string
	log  *zerolog.Logger
}

func NewTaxonomyFile(path string, logger *zerolog.Logger) *TaxonomyFile {
	compLog := logger.With().Str("component", "TaxonomyFile").Logger()
	return &TaxonomyFile{path: path, log: &compLog}
}

func (t *TaxonomyFile) Load(ctx context.Context) (*repository.Taxonomy, error) {
	tax := &repository.Taxonomy{}
	if err := readJSON(t.path, tax); err != nil {
		if os.IsNotExist(err) {
			return &repository.Taxonomy{}, nil
		}
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return tax, nil
}

func (t *TaxonomyFile) Save(ctx context.Context, tax *repository.Taxonomy) error {
	if err := writeJSON(t.path, tax); err != nil {
		return fmt.Errorf("save taxonomy: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// writeJSON replaces the whole document atomically: marshal, write to a temp
// file in the same directory, rename over the target.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
