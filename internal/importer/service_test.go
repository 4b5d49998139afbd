package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/importer"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService()
	csv := "student_id,academic_year,fee_type,total_amount,due_date\nCS-1,2025-2026,tuition,100,2025-09-30\n"

	rows, err := svc.Import("", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svc.Import(importer.FormatCSV, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Import("xlsx", strings.NewReader(csv))
	assert.ErrorContains(t, err, "unknown import format")
}
