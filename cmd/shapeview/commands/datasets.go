package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/viewer"
)

var datasetsCheck bool

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List configured datasets",
	Long: `List the configured datasets in selection order. The first one is the
default.

With --check, each dataset's info.json is loaded and its shape count shown.

Examples:
  shapeview datasets
  shapeview datasets --check --format json`,
	Args: cobra.NoArgs,
	RunE: runDatasets,
}

func init() {
	datasetsCmd.Flags().BoolVar(&datasetsCheck, "check", false, "Load each dataset's metadata")
}

// DatasetRow is one dataset in `shapeview datasets` output.
type DatasetRow struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Default     bool   `json:"default" yaml:"default"`
	TotalShapes *int   `json:"total_shapes,omitempty" yaml:"total_shapes,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

// DatasetList implements output.TableRenderer.
type DatasetList []DatasetRow

func (l DatasetList) Headers() []string {
	return []string{"Key", "Name", "Path", "Default", "Shapes", "Status"}
}

func (l DatasetList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, d := range l {
		def, total := "", "-"
		if d.Default {
			def = "*"
		}
		if d.TotalShapes != nil {
			total = strconv.Itoa(*d.TotalShapes)
		}
		rows = append(rows, []string{d.Key, d.Name, d.Path, def, total, d.Status})
	}
	return rows
}

func runDatasets(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	v, _, closeFn, err := openViewer(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	datasets := v.Catalog().List()
	list := make(DatasetList, len(datasets))
	for i, ds := range datasets {
		list[i] = DatasetRow{Key: ds.Key, Name: ds.Name, Path: ds.Path, Default: i == 0}
	}

	if datasetsCheck {
		checkDatasets(cmd.Context(), v, datasets, list)
	}

	return printer.Print(list)
}

// checkDatasets loads every dataset's metadata concurrently and fills in
// the shape counts and status lines.
func checkDatasets(ctx context.Context, v *viewer.Viewer, datasets []shape.Dataset, list DatasetList) {
	if ctx == nil {
		ctx = context.Background()
	}

	var g errgroup.Group
	g.SetLimit(4)
	for i, ds := range datasets {
		g.Go(func() error {
			sess, err := v.LoadMetadata(ctx, ds.Key)
			if err != nil {
				list[i].Status = viewer.StatusFor(err).Message
				return nil
			}
			total := sess.TotalShapes
			list[i].TotalShapes = &total
			list[i].Status = "ok"
			return nil
		})
	}
	_ = g.Wait()
}
