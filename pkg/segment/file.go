package segment

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/perimetra/ztcore/pkg/model"
)

// File is the on-disk segment definition format.
type File struct {
	Segments []model.MicroSegment `yaml:"segments"`
}

// LoadFile reads segment definitions from a YAML file and creates each one.
// Used at initialization; the first invalid definition aborts the load.
func (m *Manager) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read segment file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse segment file: %w", err)
	}

	for _, seg := range file.Segments {
		if _, err := m.Create(ctx, seg); err != nil {
			return 0, err
		}
	}
	return len(file.Segments), nil
}
