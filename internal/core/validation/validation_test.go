package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
)

type line struct {
	ProductID id.ID  `json:"productId" validate:"required"`
	Count     int64  `json:"count" validate:"gt=0"`
	Name      string `json:"name"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(line{ProductID: id.New(), Count: 1}))

	err := Struct(line{Count: 0})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	fields := appErr.Details["fields"].(map[string]string)
	assert.Equal(t, "required", fields["productId"])
	assert.Equal(t, "gt=0", fields["count"])
}

func TestItemsReportsEveryBadLine(t *testing.T) {
	items := []line{
		{ProductID: id.New(), Count: 2},
		{Count: 1},
		{ProductID: id.New(), Count: -1},
	}
	err := Items(items)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	lines := appErr.Details["lines"].(map[string]any)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines, "2")
	assert.Contains(t, lines, "3")

	assert.NoError(t, Items(items[:1]))
}
