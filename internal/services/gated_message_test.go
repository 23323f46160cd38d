package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipherpoint/cipherpoint-backend/internal/geo"
	"github.com/cipherpoint/cipherpoint-backend/internal/models"
	"github.com/cipherpoint/cipherpoint-backend/pkg/apperrors"
)

var parkLocation = models.GeoPoint{Latitude: 40.0, Longitude: -74.0, Name: "Park"}

// latitudeNorthOf returns a latitude `meters` north of lat.
func latitudeNorthOf(lat, meters float64) float64 {
	return lat + (meters/geo.EarthRadiusMeters)*(180/math.Pi)
}

func TestGatedMessageService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("requires friendship", func(t *testing.T) {
		e := newTestEnv()
		sender := e.addUser(t, "sender")
		recipient := e.addUser(t, "recipient")

		_, err := e.gated.Create(ctx, sender, recipient, "hello", "p1", parkLocation)
		requireCode(t, err, apperrors.CodePermissionDenied)

		e.befriend(t, sender, recipient)
		msg, err := e.gated.Create(ctx, sender, recipient, "hello", "p1", parkLocation)
		require.NoError(t, err)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, models.KindGated, msg.Kind)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		e := newTestEnv()
		sender := e.addUser(t, "sender")

		_, err := e.gated.Create(ctx, sender, "no-such-user", "hello", "p1", parkLocation)
		requireCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("location without a name is rejected", func(t *testing.T) {
		e := newTestEnv()
		sender := e.addUser(t, "sender")
		recipient := e.addUser(t, "recipient")
		e.befriend(t, sender, recipient)

		_, err := e.gated.Create(ctx, sender, recipient, "hello", "p1", models.GeoPoint{Latitude: 1, Longitude: 2})
		requireCode(t, err, apperrors.CodeInvalidArgument)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		e := newTestEnv()
		sender := e.addUser(t, "sender")
		recipient := e.addUser(t, "recipient")
		e.befriend(t, sender, recipient)

		_, err := e.gated.Create(ctx, sender, recipient, "", "p1", parkLocation)
		requireCode(t, err, apperrors.CodeInvalidArgument)
		_, err = e.gated.Create(ctx, sender, recipient, "hello", "", parkLocation)
		requireCode(t, err, apperrors.CodeInvalidArgument)
	})
}

func TestGatedMessageService_RequestPassword(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, string, string, string) {
		e := newTestEnv()
		sender := e.addUser(t, "sender")
		recipient := e.addUser(t, "recipient")
		e.befriend(t, sender, recipient)
		msg, err := e.gated.Create(ctx, sender, recipient, "hello", "p1", parkLocation)
		require.NoError(t, err)
		return e, sender, recipient, msg.ID
	}

	t.Run("released at the exact location", func(t *testing.T) {
		e, _, recipient, msgID := setup(t)

		grant, err := e.gated.RequestPassword(ctx, msgID, recipient, 40.0, -74.0)
		require.NoError(t, err)
		assert.Equal(t, "p1", grant.Password)
		assert.Equal(t, parkLocation, grant.Location)
		assert.Equal(t, 0, grant.Distance)
	})

	t.Run("released just inside the radius", func(t *testing.T) {
		e, _, recipient, msgID := setup(t)

		lat := latitudeNorthOf(40.0, GeofenceRadiusMeters-0.001)
		grant, err := e.gated.RequestPassword(ctx, msgID, recipient, lat, -74.0)
		require.NoError(t, err)
		assert.Equal(t, "p1", grant.Password)
		assert.Equal(t, 50, grant.Distance)
	})

	t.Run("denied just outside the radius", func(t *testing.T) {
		e, _, recipient, msgID := setup(t)

		lat := latitudeNorthOf(40.0, GeofenceRadiusMeters+0.5)
		_, err := e.gated.RequestPassword(ctx, msgID, recipient, lat, -74.0)
		appErr := requireCode(t, err, apperrors.CodePermissionDenied)

		distance, ok := appErr.Details["distance"].(int)
		require.True(t, ok, "expected distance detail, got %v", appErr.Details)
		assert.Positive(t, distance)
	})

	t.Run("denied far away with reported distance", func(t *testing.T) {
		e, _, recipient, msgID := setup(t)

		_, err := e.gated.RequestPassword(ctx, msgID, recipient, 41.0, -74.0)
		appErr := requireCode(t, err, apperrors.CodePermissionDenied)
		assert.Greater(t, appErr.Details["distance"].(int), 100000)
	})

	t.Run("sender is denied regardless of distance", func(t *testing.T) {
		e, sender, _, msgID := setup(t)

		_, err := e.gated.RequestPassword(ctx, msgID, sender, 40.0, -74.0)
		requireCode(t, err, apperrors.CodePermissionDenied)
	})

	t.Run("a third party friend is denied", func(t *testing.T) {
		e, sender, recipient, msgID := setup(t)

		third := e.addUser(t, "third")
		e.befriend(t, third, sender)
		e.befriend(t, third, recipient)

		_, err := e.gated.RequestPassword(ctx, msgID, third, 40.0, -74.0)
		requireCode(t, err, apperrors.CodePermissionDenied)
	})

	t.Run("unknown message", func(t *testing.T) {
		e, _, recipient, _ := setup(t)

		_, err := e.gated.RequestPassword(ctx, "missing", recipient, 40.0, -74.0)
		requireCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("plain message ids are not gated", func(t *testing.T) {
		e, sender, recipient, _ := setup(t)

		plainMsg, err := e.plain.Create(ctx, sender, recipient, "plain", "pw")
		require.NoError(t, err)

		_, err = e.gated.RequestPassword(ctx, plainMsg.ID, recipient, 40.0, -74.0)
		requireCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("does not consume the message", func(t *testing.T) {
		e, sender, recipient, msgID := setup(t)

		for i := 0; i < 3; i++ {
			_, err := e.gated.RequestPassword(ctx, msgID, recipient, 40.0, -74.0)
			require.NoError(t, err)
		}
		items, err := e.gated.ListConversation(ctx, recipient, sender)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, msgID, items[0].ID)
	})
}

func TestGatedMessageService_Decrypt(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, string, string, string) {
		e := newTestEnv()
		sender := e.addUser(t, "sender")
		recipient := e.addUser(t, "recipient")
		e.befriend(t, sender, recipient)
		msg, err := e.gated.Create(ctx, sender, recipient, "hello", "p1", parkLocation)
		require.NoError(t, err)
		return e, sender, recipient, msg.ID
	}

	t.Run("full lifecycle: request password, decrypt once, gone", func(t *testing.T) {
		e, sender, recipient, msgID := setup(t)

		grant, err := e.gated.RequestPassword(ctx, msgID, recipient, 40.0, -74.0)
		require.NoError(t, err)

		opened, err := e.gated.Decrypt(ctx, msgID, recipient, grant.Password)
		require.NoError(t, err)
		assert.Equal(t, "hello", opened.Message)
		assert.Equal(t, parkLocation, opened.Location)
		assert.False(t, opened.Timestamp.IsZero())

		// Consumed: no longer listed, second decrypt is not-found.
		items, err := e.gated.ListConversation(ctx, recipient, sender)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, err = e.gated.Decrypt(ctx, msgID, recipient, "p1")
		requireCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("wrong password leaves the message intact", func(t *testing.T) {
		e, sender, recipient, msgID := setup(t)

		_, err := e.gated.Decrypt(ctx, msgID, recipient, "wrong")
		requireCode(t, err, apperrors.CodeUnauthenticated)

		items, err := e.gated.ListConversation(ctx, recipient, sender)
		require.NoError(t, err)
		require.Len(t, items, 1)

		// Retry with the right password still works.
		opened, err := e.gated.Decrypt(ctx, msgID, recipient, "p1")
		require.NoError(t, err)
		assert.Equal(t, "hello", opened.Message)
	})

	t.Run("only the recipient may decrypt", func(t *testing.T) {
		e, sender, _, msgID := setup(t)

		_, err := e.gated.Decrypt(ctx, msgID, sender, "p1")
		requireCode(t, err, apperrors.CodePermissionDenied)
	})

	t.Run("concurrent decrypts have exactly one winner", func(t *testing.T) {
		e, _, recipient, msgID := setup(t)

		const workers = 16
		var wg sync.WaitGroup
		wins := make(chan struct{}, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := e.gated.Decrypt(ctx, msgID, recipient, "p1"); err == nil {
					wins <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(wins)

		assert.Len(t, wins, 1)
	})
}

func TestGatedMessageService_ListConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("requires friendship", func(t *testing.T) {
		e := newTestEnv()
		a := e.addUser(t, "a")
		b := e.addUser(t, "b")

		_, err := e.gated.ListConversation(ctx, a, b)
		requireCode(t, err, apperrors.CodePermissionDenied)
	})

	t.Run("minimized listing in insertion order", func(t *testing.T) {
		e := newTestEnv()
		a := e.addUser(t, "a")
		b := e.addUser(t, "b")
		e.befriend(t, a, b)

		first, err := e.plain.Create(ctx, a, b, "one", "pw")
		require.NoError(t, err)
		second, err := e.gated.Create(ctx, b, a, "two", "pw", parkLocation)
		require.NoError(t, err)

		items, err := e.gated.ListConversation(ctx, a, b)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, first.ID, items[0].ID)
		assert.True(t, items[0].FromMe)
		assert.Nil(t, items[0].Location)

		assert.Equal(t, second.ID, items[1].ID)
		assert.False(t, items[1].FromMe)
		require.NotNil(t, items[1].Location)
		assert.Equal(t, "Park", items[1].Location.Name)
	})
}
