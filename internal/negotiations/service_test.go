package negotiations

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)
	order := dbtest.Order(t, client, farmer.ID, coop.ID, time.Time{})

	first, err := svc.Send(ctx, SendInput{OrderID: &order.ID, SenderID: coop.UserID, ReceiverID: farmer.UserID, Message: "Can you do 40 per kg?"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, SendInput{OrderID: &order.ID, SenderID: farmer.UserID, ReceiverID: coop.UserID, Message: "42 and it's a deal."})
	require.NoError(t, err)
	_, err = svc.Send(ctx, SendInput{SenderID: farmer.UserID, ReceiverID: coop.UserID, Message: "Also have beans next week."})
	require.NoError(t, err)

	byOrder, err := svc.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, byOrder, 2)
	assert.Equal(t, first.ID, byOrder[0].ID)

	convo, err := svc.ListConversation(ctx, farmer.UserID, coop.UserID)
	require.NoError(t, err)
	require.Len(t, convo, 3)
	assert.Equal(t, first.ID, convo[0].ID)
	assert.Nil(t, convo[2].OrderID)

	reversed, err := svc.ListConversation(ctx, coop.UserID, farmer.UserID)
	require.NoError(t, err)
	assert.Len(t, reversed, 3)
}

func TestPageConversation(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)
	bystander := dbtest.Farmer(t, client)

	var sent []int64
	for i := 0; i < 5; i++ {
		from, to := farmer.UserID, coop.UserID
		if i%2 == 1 {
			from, to = to, from
		}
		msg, err := svc.Send(ctx, SendInput{SenderID: from, ReceiverID: to, Message: "offer round"})
		require.NoError(t, err)
		sent = append(sent, msg.ID)
	}
	_, err = svc.Send(ctx, SendInput{SenderID: bystander.UserID, ReceiverID: coop.UserID, Message: "unrelated"})
	require.NoError(t, err)

	var (
		got    []int64
		cursor string
		pages  int
	)
	for {
		page, err := svc.PageConversation(ctx, coop.UserID, farmer.UserID, pagination.Params{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		pages++
		for _, m := range page.Messages {
			got = append(got, m.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, sent, got)
	assert.Equal(t, 3, pages)

	_, err = svc.PageConversation(ctx, coop.UserID, farmer.UserID, pagination.Params{Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestSendValidation(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)

	_, err = svc.Send(ctx, SendInput{SenderID: farmer.UserID, ReceiverID: coop.UserID, Message: "   "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.Send(ctx, SendInput{SenderID: farmer.UserID, ReceiverID: 9999, Message: "hi"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeReferential), "got %v", err)
}

func TestMessagesOutliveTheirOrder(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	farmer := dbtest.Farmer(t, client)
	coop := dbtest.Coop(t, client)
	order := dbtest.Order(t, client, farmer.ID, coop.ID, time.Time{})

	msg, err := svc.Send(ctx, SendInput{OrderID: &order.ID, SenderID: coop.UserID, ReceiverID: farmer.UserID, Message: "hello"})
	require.NoError(t, err)

	require.NoError(t, client.Exec(ctx, "DELETE FROM orders WHERE id = ?", order.ID).Error)
	assert.Equal(t, int64(1), dbtest.Count(t, client, "negotiations", "id = ? AND order_id IS NULL", msg.ID))

	require.NoError(t, client.Exec(ctx, "DELETE FROM users WHERE id = ?", farmer.UserID).Error)
	assert.Zero(t, dbtest.Count(t, client, "negotiations", ""))
}
