package grid

import "errors"

var (
	// ErrEmptyDataset is returned when a batch has no points.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrDegenerateAxis reports an axis with a single distinct value.
	ErrDegenerateAxis = errors.New("degenerate axis")
	// ErrDegenerateRange reports a grid whose min equals its max.
	ErrDegenerateRange = errors.New("degenerate range")
)
