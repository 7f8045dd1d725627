package browserbase

import (
	"encoding/json"
	"fmt"
	"os"

	"voicebrowser/internal/domain/entity"
)

// StateFile persists the last session allocation so a restarted process can
// reclaim or release it instead of leaking provider quota. Read once at
// acquisition, written once after it; no concurrent writers expected.
type StateFile struct {
	path string
}

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Load returns the recorded session, or ok=false when the file is absent.
// A corrupt file is removed and treated as absent.
func (s *StateFile) Load() (entity.SessionInfo, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entity.SessionInfo{}, false, nil
		}
		return entity.SessionInfo{}, false, fmt.Errorf("read session state: %w", err)
	}

	var info entity.SessionInfo
	if err := json.Unmarshal(data, &info); err != nil || info.ID == "" {
		_ = os.Remove(s.path)
		return entity.SessionInfo{}, false, nil
	}
	return info, true, nil
}

func (s *StateFile) Save(info entity.SessionInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

// Clear removes the metadata file. Missing files are fine.
func (s *StateFile) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}
