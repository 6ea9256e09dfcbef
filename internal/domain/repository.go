package domain

import "context"

// Catalog resolves configured data sources and augmentations by name. Both
// lookups return ErrNotFound (possibly wrapped) on a miss.
type Catalog interface {
	DataSource(ctx context.Context, name string) (DataSource, error)
	Augmentation(ctx context.Context, kind string) (AugmentationSpec, error)
}
