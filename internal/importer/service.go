package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/importer/feecsv"
)

type Service struct {
	csvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: feecsv.NewParser(),
	}
}

// Import parses a fee assignment file. An empty format means CSV.
func (s *Service) Import(format Format, r io.Reader) ([]fee.ImportRow, error) {
	var importer Importer

	switch format {
	case FormatCSV, "":
		importer = s.csvImporter
	default:
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	return importer.Parse(r)
}
