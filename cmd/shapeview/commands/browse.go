package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/internal/cli/prompt"
	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/viewer"
)

var (
	browseOutDir      string
	browseImageFormat string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively select datasets and view shapes",
	Long: `Start an interactive session: pick a dataset, then enter shape IDs one at a
time. Each lookup prints its status line; with --out-dir the rendering is
also written to <out-dir>/<dataset>_<id>.<format>.

Leave the ID empty to pick another dataset. Press Ctrl+C to quit.

Examples:
  shapeview browse
  shapeview browse --out-dir ./renders --image-format svg`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseOutDir, "out-dir", "", "Write each rendered shape into this directory")
	browseCmd.Flags().StringVar(&browseImageFormat, "image-format", "png", "Image format for --out-dir (png|svg)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	format := strings.ToLower(browseImageFormat)
	if format != "png" && format != "svg" {
		return fmt.Errorf("unsupported image format %q: use png or svg", browseImageFormat)
	}
	if browseOutDir != "" {
		if err := os.MkdirAll(browseOutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	v, cfg, closeFn, err := openViewer(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if v.Catalog().Len() == 0 {
		return errors.New("no datasets configured")
	}

	b := &browser{
		viewer:  v,
		printer: printer,
		width:   cfg.Canvas.Width,
		height:  cfg.Canvas.Height,
		format:  format,
	}
	err = b.run(cmd)
	if prompt.IsAborted(err) {
		printer.Println("Bye.")
		return nil
	}
	return err
}

// browser holds the state of one interactive session.
type browser struct {
	viewer  *viewer.Viewer
	printer *output.Printer
	width   int
	height  int
	format  string

	// lastID is offered as the default for the next prompt.
	lastID string
}

func (b *browser) run(cmd *cobra.Command) error {
	for {
		if err := b.selectDataset(cmd); err != nil {
			return err
		}
		if err := b.lookupLoop(cmd); err != nil {
			return err
		}
	}
}

// selectDataset prompts for a dataset and makes it active. Selection
// repeats until metadata loads.
func (b *browser) selectDataset(cmd *cobra.Command) error {
	for {
		datasets := b.viewer.Catalog().List()
		options := make([]prompt.SelectOption, len(datasets))
		cursor := 0
		active := b.viewer.Active()
		for i, ds := range datasets {
			options[i] = prompt.SelectOption{Label: ds.Name, Value: ds.Key, Description: ds.Path}
			if active != nil && active.Dataset.Key == ds.Key {
				cursor = i
			}
		}

		key, err := prompt.Select("Select dataset", options, cursor)
		if err != nil {
			return err
		}

		b.printer.Status(string(viewer.SeverityInfo), viewer.StatusLoadingMetadata().Message)
		sess, status, err := b.viewer.Select(cmd.Context(), key, nil)
		b.printer.Status(string(status.Severity), status.Message)
		if err != nil {
			continue
		}

		b.printer.Println(viewer.TotalShapesLabel(sess))
		b.lastID = strconv.Itoa(sess.DefaultID())
		return nil
	}
}

// lookupLoop prompts for IDs against the active session until the user
// enters an empty ID.
func (b *browser) lookupLoop(cmd *cobra.Command) error {
	total := b.viewer.Active().TotalShapes
	label := fmt.Sprintf("Shape ID (1-%d, empty to change dataset)", total)

	for {
		raw, err := prompt.Input(label, b.lastID)
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}

		if id, perr := viewer.ParseID(raw, total); perr == nil {
			b.printer.Status(string(viewer.SeverityInfo), viewer.StatusLoadingShape(id).Message)
		}

		surface := b.newSurface()
		res, err := b.viewer.ShowActive(cmd.Context(), raw, surface.Surface)
		b.printer.Status(string(res.Status.Severity), res.Status.Message)
		if err != nil {
			continue
		}
		b.lastID = raw

		if surface.image != nil {
			path := filepath.Join(browseOutDir, fmt.Sprintf("%s_%d.%s", res.Dataset, res.Lookup.ID, b.format))
			if err := writeImage(path, surface.image); err != nil {
				b.printer.Error(err.Error())
				continue
			}
			b.printer.Printf("Wrote %s\n", path)
		} else {
			b.printer.Printf("%d blocks\n", len(res.Lookup.Record.Blocks))
		}
	}
}

type browseSurface struct {
	render.Surface
	image imageSurface
}

func (b *browser) newSurface() browseSurface {
	if browseOutDir == "" {
		return browseSurface{Surface: render.NewRecorder(b.width, b.height)}
	}
	img, _ := newImageSurface("shape."+b.format, b.width, b.height)
	return browseSurface{Surface: img.target(), image: img}
}
