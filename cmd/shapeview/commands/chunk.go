package commands

import (
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/shard"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <dataset> <index>",
	Short: "Dump the records of one chunk as NDJSON",
	Long: `Stream every record of chunk <index> of <dataset> to stdout, one JSON object
per line. Malformed lines are skipped and logged.

Examples:
  shapeview chunk web_data 1 | head
  shapeview chunk web_data 3 > chunk_3.ndjson`,
	Args: cobra.ExactArgs(2),
	RunE: runChunk,
}

func runChunk(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 1 {
		return fmt.Errorf("invalid chunk index %q: must be a positive integer", args[1])
	}

	v, cfg, closeFn, err := openViewer(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	ds, ok := v.Catalog().Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown dataset %q", args[0])
	}

	key := shard.ChunkKey(ds.Path, index)
	rc, err := v.Store().Open(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to open chunk %d: %w", index, err)
	}
	defer func() { _ = rc.Close() }()

	malformed := 0
	var records iter.Seq2[shape.Record, error] = func(yield func(shape.Record, error) bool) {
		for rec, err := range shard.Records(rc, int(cfg.MaxLineSize.Int64())) {
			var lineErr *shard.LineError
			if errors.As(err, &lineErr) {
				malformed++
				logger.Warn("Skipping malformed line", logger.Key(key), logger.Err(lineErr))
				continue
			}
			if !yield(rec, err) {
				return
			}
		}
	}

	n, err := output.PrintJSONLines(cmd.OutOrStdout(), records)
	logger.Debug("Chunk dumped", logger.Key(key), "records", n, "malformed", malformed)
	return err
}
