package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/marmos91/shapeview/pkg/viewer"
)

// Dataset is one catalog entry.
type Dataset struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Default bool   `json:"default,omitempty"`
}

// Metadata is a loaded dataset session.
type Metadata struct {
	Session   *viewer.Session `json:"session"`
	Label     string          `json:"label"`
	DefaultID int             `json:"default_id"`
	Status    viewer.Status   `json:"status"`
}

// Shape is a located and laid-out shape.
type Shape struct {
	viewer.Result
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image is a rendered shape.
type Image struct {
	ContentType string
	Data        []byte

	// Status is the viewer status line sent with the image.
	Status string
}

// Image formats served by the API.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ListDatasets returns the configured datasets.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	return listResources[Dataset](ctx, c, "/api/v1/datasets")
}

// GetMetadata loads a dataset's metadata. The dataset may be given by key
// or display name.
func (c *Client) GetMetadata(ctx context.Context, dataset string) (*Metadata, error) {
	return getResource[Metadata](ctx, c, datasetPath(dataset)+"/info", nil)
}

// GetShape looks up a shape and its layout on a width x height canvas.
// Zero dimensions use the server's canvas.
func (c *Client) GetShape(ctx context.Context, dataset, id string, width, height int) (*Shape, error) {
	return getResource[Shape](ctx, c, shapePath(dataset, id), sizeQuery(width, height))
}

// GetImage renders a shape as FormatPNG or FormatSVG.
func (c *Client) GetImage(ctx context.Context, dataset, id, format string, width, height int) (*Image, error) {
	if format != FormatPNG && format != FormatSVG {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	resp, err := c.do(ctx, shapePath(dataset, id)+"/image."+format, sizeQuery(width, height), nil)
	if err != nil {
		return nil, err
	}
	return &Image{
		ContentType: resp.contentType,
		Data:        resp.body,
		Status:      resp.header.Get(StatusHeader),
	}, nil
}

// StatusHeader carries the viewer status message on image responses.
const StatusHeader = "X-Shapeview-Status"

func datasetPath(dataset string) string {
	return "/api/v1/datasets/" + url.PathEscape(dataset)
}

func shapePath(dataset, id string) string {
	return datasetPath(dataset) + "/shapes/" + url.PathEscape(id)
}

func sizeQuery(width, height int) url.Values {
	q := url.Values{}
	if width > 0 {
		q.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("height", strconv.Itoa(height))
	}
	return q
}
