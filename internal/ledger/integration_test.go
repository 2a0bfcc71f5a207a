//go:build integration

package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/ellsondrew-png/inventory-system-tml/internal/models"
	"github.com/ellsondrew-png/inventory-system-tml/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentPersistYieldsDistinctNumbers(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	require.NoError(t, db.AutoMigrate(append([]any{&models.Client{}}, Models()...)...))
	l := New(db)
	c := seedClient(t, db)

	const workers = 20
	numbers := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv := l.Invoices.CreateDocument(c.ID, "")
			_, errs[i] = l.Invoices.Save(context.Background(), inv, []ItemInput{
				{Description: "Line", Quantity: 1, UnitPrice: price("10")},
			})
			numbers[i] = inv.Number
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := range numbers {
		require.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], "duplicate %s", numbers[i])
		seen[numbers[i]] = true
	}
	for n := 4395; n < 4395+workers; n++ {
		spec, _ := models.KindInvoice.Spec()
		assert.True(t, seen[FormatNumber(spec, n)], "missing %d", n)
	}
}
