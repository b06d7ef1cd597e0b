//go:build integration

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
)

func TestPostgresDeleteRules(t *testing.T) {
	ctx := context.Background()
	client := dbtest.OpenPostgres(t)
	svc, err := NewService(client, NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)

	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)
	cat := dbtest.Category(t, client)

	t.Run("ordered product is referential", func(t *testing.T) {
		p := dbtest.Product(t, client, farmer.ID, nil)
		order := dbtest.Order(t, client, farmer.ID, coop.ID, time.Time{})
		dbtest.OrderItem(t, client, order.ID, p.ID, "1", "10.00")
		dbtest.Offer(t, client, coop.ID, &p.ID, nil)

		err := svc.DeleteProduct(ctx, p.ID)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferential), "got %v", err)

		// The engine agrees when the service is bypassed.
		err = client.Exec(ctx, "DELETE FROM products WHERE id = ?", p.ID).Error
		assert.NotEqual(t, pkgerrors.Code(""), db.Classify(err), "got %v", err)
	})

	t.Run("sole offer target is invariant", func(t *testing.T) {
		p := dbtest.Product(t, client, farmer.ID, nil)
		dbtest.Offer(t, client, coop.ID, &p.ID, nil)

		err := svc.DeleteProduct(ctx, p.ID)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvariant), "got %v", err)

		err = client.Exec(ctx, "DELETE FROM products WHERE id = ?", p.ID).Error
		assert.Equal(t, pkgerrors.CodeInvariant, db.Classify(err), "got %v", err)
	})

	t.Run("shared target falls back to the category", func(t *testing.T) {
		p := dbtest.Product(t, client, farmer.ID, &cat.ID)
		offer := dbtest.Offer(t, client, coop.ID, &p.ID, &cat.ID)

		require.NoError(t, svc.DeleteProduct(ctx, p.ID))
		assert.Equal(t, int64(1), dbtest.Count(t, client, "coop_product_offers", "id = ? AND product_id IS NULL", offer.ID))
		assert.Zero(t, dbtest.Count(t, client, "inventory", "product_id = ?", p.ID))
	})
}
