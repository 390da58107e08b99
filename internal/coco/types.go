// Package coco defines the JSON documents produced by a dataset run: the
// intermediate mask-definitions file and the final COCO object-detection
// instances file.
package coco

// Info is the "info" section of a COCO document.
type Info struct {
	Description string `json:"description"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	Year        int    `json:"year"`
	Contributor string `json:"contributor"`
	DateCreated string `json:"date_created"`
}

// License describes one image license.
type License struct {
	URL  string `json:"url"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Image is one entry of the "images" section.
type Image struct {
	License  int    `json:"license"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ID       int    `json:"id"`
}

// Annotation is one polygon-segmentation instance record. Segmentation
// holds one flattened [x0,y0,x1,y1,...] ring per polygon; rings are closed,
// repeating the first vertex at the end.
type Annotation struct {
	Segmentation [][]float64 `json:"segmentation"`
	Area         float64     `json:"area"`
	IsCrowd      int         `json:"iscrowd"`
	ImageID      int         `json:"image_id"`
	BBox         [4]float64  `json:"bbox"` // x, y, width, height
	CategoryID   int         `json:"category_id"`
	ID           int         `json:"id"`
}

// Category is one entry of the "categories" section. Category id 0 is
// reserved for the background and never appears here.
type Category struct {
	SuperCategory string `json:"supercategory"`
	ID            int    `json:"id"`
	Name          string `json:"name"`
}

// Document is a complete COCO object-detection annotation file.
type Document struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}
