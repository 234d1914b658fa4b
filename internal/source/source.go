// Package source loads the raw points a series is built from: files in JSON,
// CSV, YAML or Parquet (optionally compressed), standard input, or a SQL query.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/parquet"
	"github.com/huangsam/tally/schema"
)

// StdinPath selects standard input as the point source.
const StdinPath = "-"

// Options selects and configures a point source.
type Options struct {
	Format    schema.SourceFormat
	Path      string
	Backend   schema.DatabaseBackend
	DBConnect string
	Query     string

	// Stdin is read when Path is empty or "-". Nil means os.Stdin.
	Stdin io.Reader
}

// FromConfig builds source options from a validated configuration.
func FromConfig(cfg *contract.Config) Options {
	return Options{
		Format:    cfg.SourceFormat,
		Path:      cfg.InputPath,
		Backend:   cfg.SourceBackend,
		DBConnect: cfg.SourceDBConnect,
		Query:     cfg.SourceQuery,
	}
}

// FileSource decodes points from a file or standard input.
type FileSource struct {
	format schema.SourceFormat
	path   string
	stdin  io.Reader
}

var (
	_ contract.PointSource = &FileSource{} // Compile-time check
	_ contract.PointSource = &SQLSource{}  // Compile-time check
)

// New returns the point source selected by opts.
func New(opts Options) (contract.PointSource, error) {
	format := opts.Format
	if format == "" {
		format = contract.InferSourceFormat(opts.Path, opts.Backend)
	}

	switch format {
	case schema.SQLSource:
		if opts.Query == "" {
			return nil, fmt.Errorf("a query is required for %s sources", opts.Backend)
		}
		connStr := opts.DBConnect
		if connStr == "" && opts.Backend == schema.SQLiteBackend {
			connStr = opts.Path
		}
		return &SQLSource{backend: opts.Backend, connStr: connStr, query: opts.Query}, nil

	case schema.JSONSource, schema.CSVSource, schema.YAMLSource, schema.ParquetSource:
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		return &FileSource{format: format, path: opts.Path, stdin: stdin}, nil

	default:
		return nil, fmt.Errorf("unsupported input format: %s. Must be json, csv, yaml, parquet, or sql", format)
	}
}

// Load is shorthand for New followed by Points.
func Load(ctx context.Context, opts Options) ([]schema.Point, error) {
	src, err := New(opts)
	if err != nil {
		return nil, err
	}
	return src.Points(ctx)
}

// Points reads the whole input and decodes it in the configured format.
func (s *FileSource) Points(ctx context.Context) ([]schema.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	return Decode(s.format, data)
}

// read returns the decompressed bytes of the file or standard input.
func (s *FileSource) read() ([]byte, error) {
	if s.isStdin() {
		return readAllDecompressed(s.stdin)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %q: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	return readAllDecompressed(f)
}

func (s *FileSource) isStdin() bool {
	return s.path == "" || s.path == StdinPath
}

// Describe returns the input path or "stdin".
func (s *FileSource) Describe() string {
	if s.isStdin() {
		return fmt.Sprintf("stdin (%s)", s.format)
	}
	return fmt.Sprintf("%s (%s)", s.path, s.format)
}

// Decode parses raw bytes in the given format into points.
func Decode(format schema.SourceFormat, data []byte) ([]schema.Point, error) {
	switch format {
	case schema.JSONSource:
		return DecodeJSON(data)
	case schema.CSVSource:
		return DecodeCSV(data)
	case schema.YAMLSource:
		return DecodeYAML(data)
	case schema.ParquetSource:
		return parquet.ReadPoints(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("format %s cannot be decoded from bytes", format)
	}
}
