package importer

import (
	"io"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
)

type Format string

const (
	FormatCSV Format = "csv"
)

type Importer interface {
	Parse(r io.Reader) ([]fee.ImportRow, error)
}
