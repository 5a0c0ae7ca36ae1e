package document_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/documents/transaction"
)

func TestSummaryQuery(t *testing.T) {
	owner, pharmacy := id.New(), id.New()

	sql, args, err := summaryQuery(owner, nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COALESCE(SUM(total_price), 0) AS total_amount, COUNT(*) AS total_transactions, "+
			"COALESCE(SUM(quantity_pills), 0) AS total_medicines FROM doc_pharmacy_transactions "+
			"WHERE owner_id = $1 AND archived = $2", sql)
	assert.Equal(t, []any{owner, false}, args)

	sql, args, err = summaryQuery(owner, &pharmacy).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "AND pharmacy_id = $3")
	assert.Equal(t, []any{owner, false, pharmacy}, args)
}

func TestTransactionConditions(t *testing.T) {
	medicine := id.New()
	cond := transactionConditions(transaction.Filter{MedicineID: &medicine, Type: transaction.TypeSold})

	sql, args, err := cond.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(medicine_id = ? AND transaction_type = ?)", sql)
	assert.Equal(t, []any{medicine, transaction.TypeSold}, args)

	assert.Empty(t, transactionConditions(transaction.Filter{}))
}

func TestLatestReceiptLocksNewest(t *testing.T) {
	pharmacy := id.New()
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sql, args, err := latestQuery(b, []string{"id", "products"}, pharmacy).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, products FROM doc_receipts WHERE pharmacy_id = $1 "+
			"ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE", sql)
	assert.Equal(t, []any{pharmacy}, args)
}
