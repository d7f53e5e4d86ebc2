package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bastiangx/nearword/pkg/stringset"
)

// DefaultLevel is the compression level used when none is configured.
const DefaultLevel = 3

// Save writes idx to path in the format its extension selects. Unknown
// extensions are written raw. The file is replaced atomically.
// level follows zstd's scale (1 fastest, 19 smallest); lz4 maps it onto its
// own nine levels.
func Save(path string, idx *stringset.Index, level int) error {
	format, err := DetectFormat(path)
	if err != nil {
		log.Debugf("%v, saving raw", err)
		format = FormatRaw
	}
	if level <= 0 {
		level = DefaultLevel
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".nearword-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	start := time.Now()
	if err := write(tmp, idx, format, level); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model into place at %s: %w", path, err)
	}

	if fi, err := os.Stat(path); err == nil {
		log.Debugf("Saved %d entries to %s (%s, %s) in %v",
			idx.Len(), path, format, humanize.Bytes(uint64(fi.Size())), time.Since(start))
	}
	return nil
}

func write(w io.Writer, idx *stringset.Index, format Format, level int) error {
	switch format {
	case FormatZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return err
		}
		if err := stringset.Encode(enc, idx); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	case FormatLZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
			return err
		}
		if err := stringset.Encode(zw, idx); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	default:
		return stringset.Encode(w, idx)
	}
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// lz4Level maps a zstd style level onto lz4's Fast..Level9.
func lz4Level(level int) lz4.CompressionLevel {
	return lz4Levels[min(max(level, 0), len(lz4Levels)-1)]
}

// Load reads a model written by Save. The format comes from the extension
// when it is known and from the file's magic number otherwise.
func Load(path string, opts ...stringset.Option) (*stringset.Index, error) {
	format, err := DetectFormat(path)
	if err != nil {
		if format, err = sniffFormat(path); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer file.Close()

	start := time.Now()
	idx, err := read(bufio.NewReader(file), format, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	log.Debugf("Loaded %d entries from %s (%s) in %v", idx.Len(), path, format, time.Since(start))
	return idx, nil
}

func read(r io.Reader, format Format, opts []stringset.Option) (*stringset.Index, error) {
	switch format {
	case FormatZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return stringset.Decode(dec, opts...)
	case FormatLZ4:
		return stringset.Decode(lz4.NewReader(r), opts...)
	default:
		return stringset.Decode(r, opts...)
	}
}
