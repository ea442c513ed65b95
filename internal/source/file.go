package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource reads a data set from a .json, .yaml or .yml file.
// JSON is parsed by the YAML decoder, which accepts it as a subset.
type FileSource struct {
	path string
}

func NewFileSource(path string) (*FileSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("unsupported data file %s: expected .json, .yaml or .yml", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &FileSource{path: path}, nil
}

func (f *FileSource) Name() string {
	return f.path
}

func (f *FileSource) Load() (DataSet, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return DataSet{}, err
	}

	var doc struct {
		DataSet `yaml:",inline"`
		Rows    []struct {
			Label string  `yaml:"label"`
			Value float64 `yaml:"value"`
		} `yaml:"rows"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return DataSet{}, fmt.Errorf("parse %s: %w", f.path, err)
	}

	data := doc.DataSet
	// Row form: [{label: A, value: 10}, ...]
	if len(data.Labels) == 0 && len(data.Values) == 0 {
		for _, r := range doc.Rows {
			data.Labels = append(data.Labels, r.Label)
			data.Values = append(data.Values, r.Value)
		}
	}

	if err := data.Validate(); err != nil {
		return DataSet{}, fmt.Errorf("%s: %w", f.path, err)
	}
	return data, nil
}
