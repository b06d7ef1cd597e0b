package farmers

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(client, NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)
	return svc, client
}

func TestCreateProfileRoundsLocation(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	user := dbtest.User(t, client, enums.UserRoleFarmer)

	county := "Nakuru"
	point := types.GeoPoint{
		Lat:  decimal.RequireFromString("-0.30309951"),
		Long: decimal.RequireFromString("36.0800265"),
	}
	dto, err := svc.CreateProfile(ctx, CreateProfileInput{UserID: user.ID, FarmName: "  Shamba  ", County: &county, Location: &point})
	require.NoError(t, err)
	assert.Equal(t, "Shamba", dto.FarmName)
	require.NotNil(t, dto.Location)
	assert.Equal(t, "-0.303100", dto.Location.Lat.StringFixed(6))
	assert.Equal(t, "36.080027", dto.Location.Long.StringFixed(6))

	got, err := svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Location)
	assert.True(t, got.Location.Lat.Equal(decimal.RequireFromString("-0.3031")), "got %s", got.Location.Lat)
	assert.Equal(t, "Nakuru", *got.County)
}

func TestCreateProfileRequiresFarmerRole(t *testing.T) {
	svc, client := newTestService(t)
	user := dbtest.User(t, client, enums.UserRoleCoop)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{UserID: user.ID, FarmName: "Nope"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	assert.Zero(t, dbtest.Count(t, client, "farmer_profiles", ""))
}

func TestCreateProfileMissingUserIsReferential(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{UserID: 777, FarmName: "Ghost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferential), "got %v", err)
}

func TestCreateProfileTwiceIsConflict(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	user := dbtest.User(t, client, enums.UserRoleFarmer)

	_, err := svc.CreateProfile(ctx, CreateProfileInput{UserID: user.ID, FarmName: "One"})
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, CreateProfileInput{UserID: user.ID, FarmName: "Two"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateProfileRejectsOutOfRangeLocation(t *testing.T) {
	svc, client := newTestService(t)
	user := dbtest.User(t, client, enums.UserRoleFarmer)
	point := types.NewGeoPoint(91, 10)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{UserID: user.ID, FarmName: "Pole", Location: &point})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestGetByUserAndUpdateLocation(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	farmer := dbtest.Farmer(t, client)

	got, err := svc.GetByUser(ctx, farmer.UserID)
	require.NoError(t, err)
	assert.Equal(t, farmer.ID, got.ID)
	assert.Nil(t, got.Location)

	county := "Kiambu"
	point := types.NewGeoPoint(-1.1714, 36.8356)
	updated, err := svc.UpdateLocation(ctx, farmer.ID, UpdateLocationInput{County: &county, Location: &point})
	require.NoError(t, err)
	assert.Equal(t, "Kiambu", *updated.County)
	require.NotNil(t, updated.Location)
	assert.True(t, updated.Location.Long.Equal(decimal.RequireFromString("36.8356")))

	_, err = svc.UpdateLocation(ctx, 5555, UpdateLocationInput{County: &county})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = svc.GetByUser(ctx, 5555)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteProfile(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	farmer := dbtest.Farmer(t, client)
	category := dbtest.Category(t, client)
	coop := dbtest.Coop(t, client)
	product := dbtest.Product(t, client, farmer.ID, &category.ID)
	offer := dbtest.Offer(t, client, coop.ID, &product.ID, &category.ID)

	require.NoError(t, svc.Delete(ctx, farmer.ID))
	assert.Zero(t, dbtest.Count(t, client, "products", ""))
	assert.Equal(t, int64(1), dbtest.Count(t, client, "coop_product_offers", "id = ? AND product_id IS NULL AND category_id = ?", offer.ID, category.ID))
	assert.Equal(t, int64(1), dbtest.Count(t, client, "users", "id = ?", farmer.UserID), "the account survives its profile")

	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, farmer.ID), pkgerrors.CodeNotFound))
}

func TestDeleteProfileRestricted(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)
	product := dbtest.Product(t, client, farmer.ID, nil)
	order := dbtest.Order(t, client, farmer.ID, coop.ID, time.Time{})
	dbtest.OrderItem(t, client, order.ID, product.ID, "2.000", "5.00")

	err := svc.Delete(ctx, farmer.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferential), "got %v", err)
	assert.Equal(t, int64(1), dbtest.Count(t, client, "farmer_profiles", "id = ?", farmer.ID))
}
