package dataset

import (
	"time"

	"github.com/akTwelve/cocosynth/internal/coco"
)

// NewDatasetInfo builds the dataset_info.json content from user-supplied
// description fields. Year and creation date are filled in from the clock.
func NewDatasetInfo(description, url, version, contributor string, license coco.License) *coco.DatasetInfo {
	now := time.Now()
	return &coco.DatasetInfo{
		Info: coco.Info{
			Description: description,
			URL:         url,
			Version:     version,
			Year:        now.Year(),
			Contributor: contributor,
			DateCreated: now.Format("01/02/2006"),
		},
		License: license,
	}
}
