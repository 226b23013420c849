package workbook

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"billfeed/internal"
)

// Source reads the transfer worksheet from a local xlsx file. Used for
// offline reruns of an exported workbook and in tests.
type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Fetch(_ context.Context, worksheet string) (internal.Grid, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &internal.NotFoundError{Resource: fmt.Sprintf("workbook %s", s.path)}
		}
		return nil, err
	}
	return Parse(blob, worksheet)
}

// Parse reads one worksheet of an xlsx blob as a text grid.
func Parse(blob []byte, worksheet string) (internal.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(worksheet)
	if err != nil || idx < 0 {
		return nil, &internal.NotFoundError{Resource: fmt.Sprintf("worksheet %q", worksheet)}
	}

	rows, err := f.GetRows(worksheet)
	if err != nil {
		return nil, err
	}
	return internal.Grid(rows), nil
}
