//go:build integration

package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
)

func TestPostgresOrders(t *testing.T) {
	ctx := context.Background()
	client := dbtest.OpenPostgres(t)
	svc, err := NewService(client, NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)

	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)
	product := dbtest.Product(t, client, farmer.ID, nil)

	order, err := svc.Create(ctx, CreateOrderInput{
		FarmerID: farmer.ID,
		CoopID:   coop.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec("2.005"), UnitPrice: dec("50.00")},
			{ProductID: product.ID, Quantity: dec("0.335"), UnitPrice: dec("12.68")},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "100.25", order.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "4.25", order.Items[1].Subtotal.StringFixed(2))

	qty := dec("3")
	item, err := svc.UpdateItem(ctx, order.Items[0].ID, UpdateItemInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "150.00", item.Subtotal.StringFixed(2))

	err = client.Exec(ctx, "UPDATE order_items SET subtotal = 1 WHERE id = ?", item.ID).Error
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, db.Classify(err), "got %v", err)

	_, err = svc.Create(ctx, CreateOrderInput{OrderNumber: order.OrderNumber, FarmerID: farmer.ID, CoopID: coop.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	require.NoError(t, svc.Delete(ctx, order.ID))
	assert.Zero(t, dbtest.Count(t, client, "order_items", "order_id = ?", order.ID))
}
