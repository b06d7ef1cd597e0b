package cooperatives

import (
	"context"
	"testing"

	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
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

func TestCreateProfileAndLookup(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	user := dbtest.User(t, client, enums.UserRoleCoop)

	dto, err := svc.CreateProfile(ctx, CreateProfileInput{UserID: user.ID, Name: "Mwea Rice Growers", RegistrationNumber: " CS/1234 "})
	require.NoError(t, err)
	assert.Equal(t, "CS/1234", dto.RegistrationNumber)

	got, err := svc.GetByRegistrationNumber(ctx, "CS/1234")
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)

	got, err = svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mwea Rice Growers", got.Name)

	_, err = svc.GetByRegistrationNumber(ctx, "CS/0000")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateProfileDuplicateRegistrationNumber(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	first := dbtest.User(t, client, enums.UserRoleCoop)
	second := dbtest.User(t, client, enums.UserRoleCoop)

	_, err := svc.CreateProfile(ctx, CreateProfileInput{UserID: first.ID, Name: "A", RegistrationNumber: "REG-1"})
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, CreateProfileInput{UserID: second.ID, Name: "B", RegistrationNumber: "REG-1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	assert.Equal(t, int64(1), dbtest.Count(t, client, "cooperative_profiles", ""))
}

func TestCreateProfileRequiresCoopRole(t *testing.T) {
	svc, client := newTestService(t)
	user := dbtest.User(t, client, enums.UserRoleFarmer)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{UserID: user.ID, Name: "A", RegistrationNumber: "REG-2"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestMembershipLifecycle(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	coop := dbtest.Coop(t, client)
	farmer := dbtest.Farmer(t, client)

	m, err := svc.AddMember(ctx, coop.ID, farmer.ID, "")
	require.NoError(t, err)
	assert.Equal(t, enums.CoopRoleMember, m.RoleInCoop)

	_, err = svc.AddMember(ctx, coop.ID, farmer.ID, enums.CoopRoleOfficer)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	require.NoError(t, svc.UpdateMemberRole(ctx, coop.ID, farmer.ID, enums.CoopRoleOfficer))

	members, err := svc.ListMembers(ctx, coop.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, farmer.ID, members[0].FarmerID)
	assert.Equal(t, farmer.FarmName, members[0].FarmName)
	assert.Equal(t, enums.CoopRoleOfficer, members[0].RoleInCoop)

	affiliations, err := svc.ListFarmerCooperatives(ctx, farmer.ID)
	require.NoError(t, err)
	require.Len(t, affiliations, 1)
	assert.Equal(t, coop.Name, affiliations[0].CoopName)

	require.NoError(t, svc.RemoveMember(ctx, coop.ID, farmer.ID))
	assert.True(t, pkgerrors.IsCode(svc.RemoveMember(ctx, coop.ID, farmer.ID), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.UpdateMemberRole(ctx, coop.ID, farmer.ID, enums.CoopRoleMember), pkgerrors.CodeNotFound))
}

func TestAddMemberMissingParentsIsReferential(t *testing.T) {
	svc, client := newTestService(t)
	coop := dbtest.Coop(t, client)

	_, err := svc.AddMember(context.Background(), coop.ID, 9999, enums.CoopRoleMember)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferential), "got %v", err)
	assert.Zero(t, dbtest.Count(t, client, "memberships", ""))
}

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	svc, client := newTestService(t)
	coop := dbtest.Coop(t, client)
	farmer := dbtest.Farmer(t, client)

	_, err := svc.AddMember(context.Background(), coop.ID, farmer.ID, "chair")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMembershipsCascadeWithCoop(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	coop := dbtest.Coop(t, client)
	farmer := dbtest.Farmer(t, client)
	_, err := svc.AddMember(ctx, coop.ID, farmer.ID, enums.CoopRoleMember)
	require.NoError(t, err)

	require.NoError(t, client.DB().Exec("DELETE FROM cooperative_profiles WHERE id = ?", coop.ID).Error)
	assert.Zero(t, dbtest.Count(t, client, "memberships", ""))
	assert.Equal(t, int64(1), dbtest.Count(t, client, "farmer_profiles", ""))
}
