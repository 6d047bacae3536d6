package table

import (
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Reader streams rows out of a tabular file.
type Reader interface {
	// Columns returns the de-duplicated header.
	Columns() []string

	// Next returns up to n rows. At the end of input it returns io.EOF with no
	// rows. Rows are aligned with Columns; missing trailing fields are Null.
	Next(ctx context.Context, n int) ([]Row, error)

	// Close releases the underlying file.
	Close() error
}

// Format is the base tabular format of an input file.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Compression is the outer compression of an input file.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gz"
	CompressionBzip Compression = "bz2"
	CompressionXZ   Compression = "xz"
	CompressionZstd Compression = "zst"
)

// Options controls how Open parses a file.
type Options struct {
	// Sheet selects an XLSX worksheet. Empty picks the first data sheet.
	Sheet string

	// NA decides which raw values are null. Nil means DefaultNASet.
	NA *NASet
}

func (o Options) naSet() NASet {
	if o.NA == nil {
		return DefaultNASet()
	}
	return *o.NA
}

// DetectFormat derives the format and compression from a file name, for
// example "reviews.csv.gz" is (csv, gz).
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	comp := CompressionNone
	for _, c := range []Compression{CompressionGzip, CompressionBzip, CompressionXZ, CompressionZstd} {
		if strings.HasSuffix(name, "."+string(c)) {
			comp = c
			name = strings.TrimSuffix(name, "."+string(c))
			break
		}
	}

	switch filepath.Ext(name) {
	case ".csv", ".txt":
		return FormatCSV, comp, nil
	case ".tsv", ".tab":
		return FormatTSV, comp, nil
	case ".xlsx":
		return FormatXLSX, comp, nil
	default:
		return "", comp, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Open opens path and reads its header. A missing file yields an error
// matching os.ErrNotExist whatever its extension; the format is only checked
// once the file exists.
func Open(path string, opts Options) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}

	format, comp, err := DetectFormat(path)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r, closeDecomp, err := decompress(f, comp)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	closer := func() error {
		var errs []error
		if closeDecomp != nil {
			errs = append(errs, closeDecomp())
		}
		errs = append(errs, f.Close())
		return errors.Join(errs...)
	}

	var rd Reader
	switch format {
	case FormatCSV:
		rd, err = newDelimitedReader(r, ',', opts.naSet(), closer)
	case FormatTSV:
		rd, err = newDelimitedReader(r, '\t', opts.naSet(), closer)
	case FormatXLSX:
		rd, err = newXLSXReader(r, opts.Sheet, opts.naSet(), closer)
	}
	if err != nil {
		_ = closer()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rd, nil
}

// decompress wraps r according to comp. The returned close func may be nil.
func decompress(r io.Reader, comp Compression) (io.Reader, func() error, error) {
	switch comp {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionBzip:
		return bzip2.NewReader(r), nil, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return xr, nil, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return dec, func() error { dec.Close(); return nil }, nil
	default:
		return r, nil, nil
	}
}

// ReadAll drains r into a single batch. Intended for small inputs and tests.
func ReadAll(ctx context.Context, r Reader) (*Batch, error) {
	b := &Batch{Columns: r.Columns()}
	for {
		rows, err := r.Next(ctx, 1024)
		b.Rows = append(b.Rows, rows...)
		if errors.Is(err, io.EOF) {
			return b, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
