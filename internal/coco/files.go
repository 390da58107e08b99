package coco

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DatasetInfoFile holds the dataset description and license used when
// assembling the final COCO document.
const DatasetInfoFile = "dataset_info.json"

// InstancesFile is the name of the final COCO annotation document.
const InstancesFile = "coco_instances.json"

// DatasetInfo is the content of a dataset_info.json file.
type DatasetInfo struct {
	Info    Info    `json:"info"`
	License License `json:"license"`
}

// WriteFile serializes the dataset info into dir.
func (i *DatasetInfo) WriteFile(dir string) error {
	return writeJSON(filepath.Join(dir, DatasetInfoFile), i)
}

// ReadDatasetInfo loads a dataset_info.json file.
func ReadDatasetInfo(path string) (*DatasetInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset info %s: %w", path, err)
	}
	var info DatasetInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse dataset info %s: %w", path, err)
	}
	return &info, nil
}

// WriteFile serializes the COCO document into dir.
func (d *Document) WriteFile(dir string) error {
	return writeJSON(filepath.Join(dir, InstancesFile), d)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
