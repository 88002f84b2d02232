package exclusion

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suchimauz/meeting-rooms-availability/internal/config"
	"github.com/suchimauz/meeting-rooms-availability/internal/core/ports/out"
)

// Формат файла исключений:
//
//	roomEmails:
//	  - storage@corp.local
//	roomNames:
//	  - Server Room
type exclusionFile struct {
	RoomEmails []string `yaml:"roomEmails"`
	RoomNames  []string `yaml:"roomNames"`
}

// ExclusionAdapter: неизменяемое множество исключённых переговорок.
// Сравнение без учёта регистра.
type ExclusionAdapter struct {
	ids map[string]struct{}
}

var _ out.ExclusionPort = (*ExclusionAdapter)(nil)

func NewExclusionAdapter(cfg *config.Config, logger out.LoggerPort) (*ExclusionAdapter, error) {
	ids := append([]string{}, cfg.Exclusion.Rooms...)

	if cfg.Exclusion.File != "" {
		fromFile, err := LoadFile(cfg.Exclusion.File)
		if err != nil {
			logger.Error("exclusion.load.failed", out.LogFields{
				"file":  cfg.Exclusion.File,
				"error": err.Error(),
			})
			return nil, err
		}
		ids = append(ids, fromFile...)
	}

	adapter := NewExclusionSet(ids...)

	logger.Info("exclusion.loaded", out.LogFields{
		"count": len(adapter.ids),
	})

	return adapter, nil
}

func NewExclusionSet(ids ...string) *ExclusionAdapter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = normalizeID(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return &ExclusionAdapter{ids: set}
}

func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("exclusion.read: %w", err)
	}

	var file exclusionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("exclusion.decode: %w", err)
	}

	return append(file.RoomEmails, file.RoomNames...), nil
}

func (a *ExclusionAdapter) IsExcluded(id string) bool {
	_, ok := a.ids[normalizeID(id)]
	return ok
}

func (a *ExclusionAdapter) Len() int {
	return len(a.ids)
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
