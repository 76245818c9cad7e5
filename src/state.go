package aprsmover

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/natefinch/atomic"
)

// TraversalState is the persisted route progress.  It is small and written
// after every beacon so a restart resumes near the correct position
// instead of snapping back to the route origin.
type TraversalState struct {
	DistanceKm float64   `json:"distance_traveled"`
	LastUpdate time.Time `json:"last_update_wallclock"`
}

// StateStore persists TraversalState between runs.
type StateStore interface {
	// Load returns the stored state and whether one was found.  A missing
	// or unreadable state file is not an error; we just start fresh.
	Load() (TraversalState, bool, error)
	Save(TraversalState) error
}

// FileStateStore keeps the state as a small JSON file.  Writes go through
// a temp file and rename so a crash mid-write can't corrupt the state.
type FileStateStore struct {
	Path string
}

func (f *FileStateStore) Load() (TraversalState, bool, error) {
	var state TraversalState

	var data, err = os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return state, false, nil
	}
	if err != nil {
		return state, false, err
	}

	if err := json.Unmarshal(data, &state); err != nil {
		Logger.Warn("State file is malformed, starting fresh", "path", f.Path, "err", err)
		return TraversalState{}, false, nil
	}

	return state, true, nil
}

func (f *FileStateStore) Save(state TraversalState) error {
	var data, err = json.Marshal(state)
	if err != nil {
		return err
	}
	return atomic.WriteFile(f.Path, bytes.NewReader(data))
}

// NullStateStore is used when no state file is configured.
type NullStateStore struct{}

func (NullStateStore) Load() (TraversalState, bool, error) { return TraversalState{}, false, nil }
func (NullStateStore) Save(TraversalState) error           { return nil }
