package preprocess

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"goetl/domain/core"
)

// paramsVersion is bumped whenever the Fitted JSON layout changes
const paramsVersion = 1

type paramsFile struct {
	Version int     `json:"version"`
	Fitted  *Fitted `json:"fitted"`
}

// Save writes the fitted parameters as indented JSON
func (f *Fitted) Save(path string) error {
	data, err := json.MarshalIndent(paramsFile{Version: paramsVersion, Fitted: f}, "", "  ")
	if err != nil {
		return core.NewSaveError(path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return core.NewSaveError(path, err)
	}
	return nil
}

// LoadFitted reads parameters written by Save
func LoadFitted(path string) (*Fitted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewNotFoundError(path)
		}
		return nil, core.NewLoadError(path, err)
	}

	var file paramsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, core.NewLoadError(path, err)
	}
	if file.Version != paramsVersion {
		return nil, core.NewLoadError(path, fmt.Errorf("unsupported params version %d", file.Version))
	}
	if file.Fitted == nil {
		return nil, core.NewLoadError(path, errors.New("no fitted parameters"))
	}
	if err := file.Fitted.Options.Validate(); err != nil {
		return nil, core.NewLoadError(path, err)
	}
	return file.Fitted, nil
}
