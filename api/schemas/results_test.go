package schemas_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/trackrunner/api/schemas"
)

func TestRecordConstructors(t *testing.T) {
	ok := schemas.SuccessRecord("MAEU123456", "001_MAEU123456_tracking.pdf")
	assert.Equal(t, schemas.StatusSuccess, ok.Status)
	assert.Equal(t, "001_MAEU123456_tracking.pdf", ok.File)
	assert.Empty(t, ok.Error)

	failed := schemas.ErrorRecord("BADID", errors.New("no matching entry"))
	assert.Equal(t, schemas.StatusError, failed.Status)
	assert.Equal(t, "no matching entry", failed.Error)
	assert.Empty(t, failed.File)

	// An error record never has an empty description.
	assert.NotEmpty(t, schemas.ErrorRecord("X", nil).Error)
	assert.NotEmpty(t, schemas.ErrorRecord("X", errors.New("")).Error)
}

func TestOutcomeCounts(t *testing.T) {
	var nilOutcome *schemas.Outcome
	s, f := nilOutcome.Counts()
	assert.Zero(t, s)
	assert.Zero(t, f)

	o := &schemas.Outcome{Results: []schemas.ResultRecord{
		schemas.SuccessRecord("A", "001_A_tracking.pdf"),
		schemas.ErrorRecord("B", errors.New("timeout")),
		schemas.SuccessRecord("C", "003_C_tracking.pdf"),
	}}
	s, f = o.Counts()
	assert.Equal(t, 2, s)
	assert.Equal(t, 1, f)
}
