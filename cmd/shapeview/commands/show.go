package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/pkg/apiclient"
	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/viewer"
)

var (
	showOutput string
	showWidth  int
	showHeight int
	showBlocks bool
	showServer string
)

var showCmd = &cobra.Command{
	Use:   "show <dataset> <id>",
	Short: "Look up a shape and render it",
	Long: `Look up shape <id> in <dataset> and render it.

The image format follows the --output extension (.png or .svg). Without
--output the shape is only looked up and its status printed.

With --server the shape is fetched from a running shapeview API instead
of being read from the configured store.

Exit status is 2 when the shape is missing from its chunk and 1 for any
other failure.

Examples:
  shapeview show web_data 42 -o shape42.png
  shapeview show "Set 2 (Polyominoes)" 7 -o shape7.svg --width 800 --height 800
  shapeview show web_data 42 --blocks
  shapeview show web_data 42 --format json
  shapeview show web_data 42 -o shape42.png --server http://localhost:8080`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "Write the rendering to this file (.png or .svg)")
	showCmd.Flags().IntVar(&showWidth, "width", 0, "Image width in pixels (default: canvas.width)")
	showCmd.Flags().IntVar(&showHeight, "height", 0, "Image height in pixels (default: canvas.height)")
	showCmd.Flags().BoolVar(&showBlocks, "blocks", false, "Print the shape's blocks")
	showCmd.Flags().StringVar(&showServer, "server", "", "Fetch from this shapeview API instead of the local store")
}

// imageSurface is a render target that can be written to a file.
type imageSurface interface {
	target() render.Surface
	encode(buf *bytes.Buffer) error
}

type pngSurface struct{ *render.Raster }

func (s pngSurface) target() render.Surface         { return s.Raster }
func (s pngSurface) encode(buf *bytes.Buffer) error { return s.EncodePNG(buf) }

type svgSurface struct{ *render.SVG }

func (s svgSurface) target() render.Surface { return s.SVG }
func (s svgSurface) encode(buf *bytes.Buffer) error {
	_, err := s.WriteTo(buf)
	return err
}

// newImageSurface picks a surface from the file extension of path.
func newImageSurface(path string, width, height int) (imageSurface, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return pngSurface{render.NewRaster(width, height)}, nil
	case ".svg":
		return svgSurface{render.NewSVG(width, height)}, nil
	default:
		return nil, fmt.Errorf("unsupported image format %q: use .png or .svg", filepath.Ext(path))
	}
}

// writeImage encodes surface and writes it to path.
func writeImage(path string, surface imageSurface) error {
	var buf bytes.Buffer
	if err := surface.encode(&buf); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// BlockList implements output.TableRenderer for a shape's blocks.
type BlockList []blockRow

type blockRow struct {
	X, Y int
	Type string
	Code int
}

func (l BlockList) Headers() []string {
	return []string{"X", "Y", "Type", "Code"}
}

func (l BlockList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, b := range l {
		rows = append(rows, []string{strconv.Itoa(b.X), strconv.Itoa(b.Y), b.Type, strconv.Itoa(b.Code)})
	}
	return rows
}

func runShow(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	if showServer != "" {
		return runRemoteShow(cmd, printer, args)
	}

	v, cfg, closeFn, err := openViewer(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	width, height := cfg.Canvas.Width, cfg.Canvas.Height
	if showWidth > 0 {
		width = showWidth
	}
	if showHeight > 0 {
		height = showHeight
	}
	if minSize := v.Renderer().MinSize(); width < minSize || height < minSize {
		return fmt.Errorf("image size %dx%d is too small: width and height must be at least %d to fit the padding",
			width, height, minSize)
	}

	var (
		surface render.Surface = render.NewRecorder(width, height)
		image   imageSurface
	)
	if showOutput != "" {
		image, err = newImageSurface(showOutput, width, height)
		if err != nil {
			return err
		}
		surface = image.target()
	}

	ctx := cmd.Context()
	sess, err := v.LoadMetadata(ctx, args[0])
	if err != nil {
		return reportShowError(printer, &viewer.Result{Status: viewer.StatusFor(err)}, err)
	}

	res, err := v.Show(ctx, sess, args[1], surface)
	if err != nil {
		return reportShowError(printer, res, err)
	}

	if image != nil {
		if err := writeImage(showOutput, image); err != nil {
			return err
		}
	}

	if printer.Format() != output.FormatTable {
		return printer.Print(res)
	}

	printer.Status(string(res.Status.Severity), res.Status.Message)
	if showOutput != "" {
		printer.Printf("Wrote %dx%d image to %s\n", width, height, showOutput)
	}
	if showBlocks {
		return printBlocks(printer, res.Lookup.Record.Blocks)
	}
	return nil
}

func printBlocks(printer *output.Printer, blocks []shape.Block) error {
	list := make(BlockList, 0, len(blocks))
	for _, b := range blocks {
		list = append(list, blockRow{X: b.X, Y: b.Y, Type: b.Type.String(), Code: b.Type.Code()})
	}
	printer.Println()
	return printer.Print(list)
}

// runRemoteShow is runShow against a running server.
func runRemoteShow(cmd *cobra.Command, printer *output.Printer, args []string) error {
	ctx := cmd.Context()
	client := apiclient.New(showServer)

	if showOutput != "" {
		format := strings.TrimPrefix(strings.ToLower(filepath.Ext(showOutput)), ".")
		if format != apiclient.FormatPNG && format != apiclient.FormatSVG {
			return fmt.Errorf("unsupported image format %q: use .png or .svg", filepath.Ext(showOutput))
		}

		img, err := client.GetImage(ctx, args[0], args[1], format, showWidth, showHeight)
		if err != nil {
			return reportRemoteError(printer, err)
		}
		if err := os.WriteFile(showOutput, img.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
		printer.Status(string(viewer.SeveritySuccess), img.Status)
		printer.Printf("Wrote image to %s\n", showOutput)
		return nil
	}

	res, err := client.GetShape(ctx, args[0], args[1], showWidth, showHeight)
	if err != nil {
		return reportRemoteError(printer, err)
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(res)
	}
	printer.Status(string(res.Status.Severity), res.Status.Message)
	if showBlocks && res.Lookup != nil {
		return printBlocks(printer, res.Lookup.Record.Blocks)
	}
	return nil
}

// reportRemoteError prints the status line of an API problem and maps it
// to the same exit status a local lookup would have.
func reportRemoteError(printer *output.Printer, err error) error {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	status := apiErr.Status()
	code := 1
	if apiErr.IsShapeNotFound() {
		code = 2
	}
	if printer.Format() != output.FormatTable {
		if perr := printer.Print(apiErr); perr != nil {
			return perr
		}
	} else {
		printer.Status(string(status.Severity), status.Message)
	}
	return &ExitError{Code: code, Err: err}
}

// reportShowError prints the failure status, or the partial result in
// JSON/YAML, and returns an ExitError carrying the exit status.
func reportShowError(printer *output.Printer, res *viewer.Result, err error) error {
	if printer.Format() != output.FormatTable {
		if perr := printer.Print(res); perr != nil {
			return perr
		}
	} else {
		printer.Status(string(res.Status.Severity), res.Status.Message)
	}
	return &ExitError{Code: exitCode(err), Err: err}
}
