package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Dataset is a named collection of shapes stored under a root path.
type Dataset struct {
	// Key identifies the dataset in URLs and on the command line.
	Key string `json:"key" yaml:"key"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Path is the dataset root inside the object store.
	Path string `json:"path" yaml:"path"`
}

// Info is the metadata descriptor stored as <root>/info.json.
type Info struct {
	TotalShapes    int `json:"total_shapes"`
	ShapesPerChunk int `json:"shapes_per_chunk,omitempty"`
	TotalChunks    int `json:"total_chunks,omitempty"`
}

// ErrMalformedInfo is returned when info.json is not a usable descriptor.
var ErrMalformedInfo = errors.New("malformed dataset info")

// ParseInfo decodes an info.json payload. Only the presence and sign of
// total_shapes are checked.
func ParseInfo(data []byte) (Info, error) {
	var raw struct {
		TotalShapes    *int `json:"total_shapes"`
		ShapesPerChunk int  `json:"shapes_per_chunk"`
		TotalChunks    int  `json:"total_chunks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrMalformedInfo, err)
	}
	if raw.TotalShapes == nil {
		return Info{}, fmt.Errorf("%w: total_shapes is missing", ErrMalformedInfo)
	}
	if *raw.TotalShapes < 0 {
		return Info{}, fmt.Errorf("%w: total_shapes is negative (%d)", ErrMalformedInfo, *raw.TotalShapes)
	}
	return Info{
		TotalShapes:    *raw.TotalShapes,
		ShapesPerChunk: raw.ShapesPerChunk,
		TotalChunks:    raw.TotalChunks,
	}, nil
}

// Catalog is the ordered set of configured datasets. The first entry is the
// default selection. A Catalog is never mutated after construction.
type Catalog struct {
	datasets []Dataset
	byKey    map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate keys.
func NewCatalog(datasets ...Dataset) (*Catalog, error) {
	c := &Catalog{
		datasets: make([]Dataset, 0, len(datasets)),
		byKey:    make(map[string]int, len(datasets)),
	}
	for _, ds := range datasets {
		if ds.Key == "" {
			return nil, errors.New("dataset key is required")
		}
		if _, dup := c.byKey[ds.Key]; dup {
			return nil, fmt.Errorf("duplicate dataset key %q", ds.Key)
		}
		if ds.Name == "" {
			ds.Name = ds.Key
		}
		if ds.Path == "" {
			ds.Path = ds.Key
		}
		c.byKey[ds.Key] = len(c.datasets)
		c.datasets = append(c.datasets, ds)
	}
	return c, nil
}

// Lookup finds a dataset by key, falling back to a case-insensitive display
// name match.
func (c *Catalog) Lookup(name string) (Dataset, bool) {
	if c == nil {
		return Dataset{}, false
	}
	if i, ok := c.byKey[name]; ok {
		return c.datasets[i], true
	}
	for _, ds := range c.datasets {
		if strings.EqualFold(ds.Name, name) {
			return ds, true
		}
	}
	return Dataset{}, false
}

// Default returns the first configured dataset.
func (c *Catalog) Default() (Dataset, bool) {
	if c == nil || len(c.datasets) == 0 {
		return Dataset{}, false
	}
	return c.datasets[0], true
}

// List returns a copy of the datasets in configuration order.
func (c *Catalog) List() []Dataset {
	if c == nil {
		return nil
	}
	out := make([]Dataset, len(c.datasets))
	copy(out, c.datasets)
	return out
}

// Len returns the number of datasets.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.datasets)
}
