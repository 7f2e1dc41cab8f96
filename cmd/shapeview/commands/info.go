package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/internal/cli/timeutil"
	"github.com/marmos91/shapeview/pkg/shard"
	"github.com/marmos91/shapeview/pkg/viewer"
)

var infoCmd = &cobra.Command{
	Use:   "info [dataset]",
	Short: "Show a dataset's metadata",
	Long: `Load a dataset's info.json and print its metadata. Without an argument the
default dataset is used. The dataset may be given by key or display name.

Examples:
  shapeview info
  shapeview info web_data_set2 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

// InfoResult is the output of `shapeview info`.
type InfoResult struct {
	Session        *viewer.Session `json:"session" yaml:"session"`
	Label          string          `json:"label" yaml:"label"`
	ShapesPerChunk int             `json:"shapes_per_chunk" yaml:"shapes_per_chunk"`
	TotalChunks    int             `json:"total_chunks" yaml:"total_chunks"`
	Status         viewer.Status   `json:"status" yaml:"status"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	v, _, closeFn, err := openViewer(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	name, err := defaultDataset(v, args)
	if err != nil {
		return err
	}

	sess, err := v.LoadMetadata(cmd.Context(), name)
	if err != nil {
		status := viewer.StatusFor(err)
		printer.Status(string(status.Severity), status.Message)
		return &ExitError{Code: exitCode(err), Err: err}
	}

	res := InfoResult{
		Session:        sess,
		Label:          viewer.TotalShapesLabel(sess),
		ShapesPerChunk: v.ShapesPerChunk(),
		TotalChunks:    totalChunks(sess.TotalShapes, v.ShapesPerChunk()),
		Status:         viewer.StatusMetadataLoaded(sess.Dataset.Path, sess.TotalShapes),
	}

	if printer.Format() != output.FormatTable {
		return printer.Print(res)
	}

	var kv output.KeyValues
	kv.Add("Dataset", sess.Dataset.Key)
	kv.Add("Name", sess.Dataset.Name)
	kv.Add("Path", sess.Dataset.Path)
	kv.Add("Session", sess.ID)
	kv.Add("Shapes", res.Label)
	kv.Add("Shapes per chunk", strconv.Itoa(res.ShapesPerChunk))
	kv.Add("Chunks", strconv.Itoa(res.TotalChunks))
	kv.Add("Loaded at", timeutil.FormatTime(sess.LoadedAt.Format(time.RFC3339)))
	if err := output.PrintKeyValues(printer.Writer(), kv); err != nil {
		return err
	}
	printer.Println()
	printer.Status(string(res.Status.Severity), res.Status.Message)
	return nil
}

// totalChunks is the number of shards needed for total shapes.
func totalChunks(total, perChunk int) int {
	if total <= 0 {
		return 0
	}
	return shard.Index(total, perChunk)
}
