package service

import (
	"context"
	"testing"

	"fridge-backend/apperr"
	"fridge-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCircle_CreatorBecomesAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	c, err := f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: alice, Name: "Family", Description: strPtr("us")})
	require.NoError(t, err)
	assert.Equal(t, 1, c.MemberCount)

	members, err := f.circles.ListMembers(ctx, alice, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, alice, members[0].UserID)
	assert.Equal(t, models.RoleAdmin, members[0].Role)

	_, err = f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: alice, Name: ""})
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Circle name required", apperr.PublicMessage(err))
}

func TestCreateCircle_FailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No such user: the insert fails its foreign key.
	_, err := f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: 4242, Name: "Ghost"})
	requireKind(t, err, apperr.KindPersistence)

	var n int
	require.NoError(t, f.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM circles`).Scan(&n))
	assert.Zero(t, n)
}

func TestInviteMember_NonAdminRejectedRegardlessOfTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	f.register(t, "dave")

	c, err := f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: alice, Name: "Family"})
	require.NoError(t, err)
	_, err = f.circles.InviteMember(ctx, InviteMemberRequest{RequesterID: alice, CircleID: c.ID, Username: "bob"})
	require.NoError(t, err)

	for _, requester := range []int64{bob, carol} {
		for _, target := range []string{"dave", "nobody", "alice", ""} {
			_, err := f.circles.InviteMember(ctx, InviteMemberRequest{RequesterID: requester, CircleID: c.ID, Username: target})
			requireKind(t, err, apperr.KindAuthorization)
			assert.Equal(t, "Only admins can invite members", apperr.PublicMessage(err))
		}
	}

	// Unknown circle: nobody is admin there.
	_, err = f.circles.InviteMember(ctx, InviteMemberRequest{RequesterID: alice, CircleID: c.ID + 50, Username: "dave"})
	requireKind(t, err, apperr.KindAuthorization)
}

func TestInviteMember_AdminPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	c, err := f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: alice, Name: "Family"})
	require.NoError(t, err)

	res, err := f.circles.InviteMember(ctx, InviteMemberRequest{RequesterID: alice, CircleID: c.ID, Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, &InviteMemberResult{Success: true, UserID: bob, Username: "bob"}, res)

	_, err = f.circles.InviteMember(ctx, InviteMemberRequest{RequesterID: alice, CircleID: c.ID, Username: "bob"})
	requireKind(t, err, apperr.KindConflict)

	_, err = f.circles.InviteMember(ctx, InviteMemberRequest{RequesterID: alice, CircleID: c.ID, Username: "zed"})
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "User not found", apperr.PublicMessage(err))

	members, err := f.circles.ListMembers(ctx, bob, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, models.RoleMember, members[1].Role)
}

func TestListCirclesAndMembers_Gating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	carol := f.register(t, "carol")

	c, err := f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: alice, Name: "Family"})
	require.NoError(t, err)
	_, err = f.circles.CreateCircle(ctx, CreateCircleRequest{UserID: alice, Name: "Work"})
	require.NoError(t, err)

	mine, err := f.circles.ListCircles(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Work", mine[0].Name)

	theirs, err := f.circles.ListCircles(ctx, carol)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = f.circles.ListMembers(ctx, carol, c.ID)
	requireKind(t, err, apperr.KindAuthorization)
	assert.Equal(t, "Not a member of this circle", apperr.PublicMessage(err))
}
