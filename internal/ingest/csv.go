package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/angelmondragon/churnsight/internal/frame"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
)

// CSVSource reads transactions from a flat file. Configured drop columns are
// projected away (strictly) before the contract columns are bound.
type CSVSource struct {
	path        string
	dropColumns []string
}

func NewCSVSource(path string, dropColumns ...string) *CSVSource {
	return &CSVSource{path: path, dropColumns: dropColumns}
}

// Load reads, projects, binds, and validates the transaction file.
func (s *CSVSource) Load(ctx context.Context) ([]Transaction, error) {
	f, err := s.LoadFrame(ctx)
	if err != nil {
		return nil, err
	}
	if len(s.dropColumns) > 0 {
		f, err = f.DropColumns(s.dropColumns...)
		if err != nil {
			return nil, err
		}
	}
	return FromFrame(f)
}

// LoadFrame reads the raw file into a frame without binding types.
func (s *CSVSource) LoadFrame(_ context.Context) (*frame.Frame, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "opening transaction file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSchema, err, "reading transaction file")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeSchema, "transaction file has no header row")
	}
	return frame.New(records[0], records[1:])
}

// WriteFrame writes a frame as CSV, creating parent directories as needed.
func WriteFrame(path string, f *frame.Frame) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating output directory")
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating output file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(f.Columns); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing output header")
	}
	for _, row := range f.Rows {
		if err := writer.Write(row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing output row")
		}
	}
	writer.Flush()
	return writer.Error()
}
