package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
)

type ownedRow struct {
	entity.Owned
	Name    string `db:"name"`
	Ignored string `db:"-"`
	NoTag   string
}

func TestExtractDBColumnsDescendsIntoEmbedded(t *testing.T) {
	cols := ExtractDBColumns[ownedRow]()

	assert.Equal(t, []string{"id", "created_at", "updated_at", "owner_id", "archived", "name"}, cols)
	assert.Equal(t, []string{"owner_id", "archived", "name"}, Without(cols, "id", "created_at", "updated_at"))
}

func TestStructToMap(t *testing.T) {
	owner := id.New()
	row := &ownedRow{Owned: entity.NewOwned(owner), Name: "Aspirin", Ignored: "x"}
	row.Archived = true

	m := StructToMap(row)
	require.NotNil(t, m)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, owner, m["owner_id"])
	assert.Equal(t, true, m["archived"])
	assert.Equal(t, "Aspirin", m["name"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 6)

	picked := Pick(m, []string{"name", "missing"})
	assert.Equal(t, map[string]any{"name": "Aspirin"}, picked)

	var nilRow *ownedRow
	assert.Nil(t, StructToMap(nilRow))
}
