package ports

import (
	"context"

	"goetl/domain/dataset"
)

// DatasetReader is the extract side of the pipeline
type DatasetReader interface {
	// Read loads the complete file at path
	Read(ctx context.Context, path string) (*dataset.Dataset, error)
}

// DatasetWriter is the load side of the pipeline
type DatasetWriter interface {
	// Write replaces the file at path with ds
	Write(ctx context.Context, ds *dataset.Dataset, path string) error
}

// Transformer turns an input dataset into model-ready features
type Transformer interface {
	Transform(ds *dataset.Dataset) (*dataset.Dataset, error)
}
