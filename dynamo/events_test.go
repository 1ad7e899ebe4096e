package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/eventhive/event-registration/events"
	"github.com/eventhive/event-registration/ptr"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() events.Event {
	return events.Event{
		ID:               uuid.New(),
		Version:          1,
		Title:            "Test Event",
		Description:      "A longer description",
		ShortDescription: "Short",
		EventDate:        ptr.Time(time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)),
		Questions: []events.Question{
			{ID: uuid.New(), Text: "T-shirt size?", Type: events.SINGLE_CHOICE, Required: true, Attributes: ptr.String(`["S","M","L"]`)},
			{ID: uuid.New(), Text: "Anything else?", Type: events.FREE_TEXT, Required: false},
		},
		CustomFields: []events.CustomField{{Name: "venue", Value: "Hall 3"}},
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips an event", func(t *testing.T) {
		resetTable(ctx)
		event := testEvent()
		event.RegistrationCloseTime = ptr.Time(time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second))

		require.NoError(t, db.CreateEvent(ctx, event))

		got, err := db.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(event, got))
	})

	t.Run("round trips an event without optional dates", func(t *testing.T) {
		resetTable(ctx)
		event := testEvent()
		event.EventDate = nil

		require.NoError(t, db.CreateEvent(ctx, event))

		got, err := db.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Nil(t, got.EventDate)
		assert.Nil(t, got.RegistrationCloseTime)
	})

	t.Run("creating the same event twice fails", func(t *testing.T) {
		resetTable(ctx)
		event := testEvent()

		require.NoError(t, db.CreateEvent(ctx, event))

		err := db.CreateEvent(ctx, event)
		var eventErr *events.Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, events.REASON_EVENT_ALREADY_EXISTS, eventErr.Reason)
	})

	t.Run("getting an unknown event fails", func(t *testing.T) {
		resetTable(ctx)

		_, err := db.GetEvent(ctx, uuid.New())
		var eventErr *events.Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, events.REASON_EVENT_DOES_NOT_EXIST, eventErr.Reason)
	})
}

func TestUpdateEventStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("updates with a bumped version", func(t *testing.T) {
		resetTable(ctx)
		event := testEvent()
		require.NoError(t, db.CreateEvent(ctx, event))

		event.Title = "Renamed"
		event.Version = 2
		require.NoError(t, db.UpdateEvent(ctx, event))

		got, err := db.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		resetTable(ctx)
		event := testEvent()
		require.NoError(t, db.CreateEvent(ctx, event))

		event.Version = 3
		err := db.UpdateEvent(ctx, event)
		var eventErr *events.Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, events.REASON_EVENT_DOES_NOT_EXIST, eventErr.Reason)
	})

	t.Run("updating an unknown event fails", func(t *testing.T) {
		resetTable(ctx)
		event := testEvent()
		event.Version = 2

		err := db.UpdateEvent(ctx, event)
		var eventErr *events.Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, events.REASON_EVENT_DOES_NOT_EXIST, eventErr.Reason)
	})
}

func TestGetOpenEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("filters out closed events", func(t *testing.T) {
		resetTable(ctx)

		open := testEvent()
		open.Title = "Open"
		open.RegistrationCloseTime = ptr.Time(now.Add(24 * time.Hour))
		require.NoError(t, db.CreateEvent(ctx, open))

		openEnded := testEvent()
		openEnded.Title = "Open ended"
		require.NoError(t, db.CreateEvent(ctx, openEnded))

		closed := testEvent()
		closed.Title = "Closed"
		closed.RegistrationCloseTime = ptr.Time(now.Add(-24 * time.Hour))
		require.NoError(t, db.CreateEvent(ctx, closed))

		result, err := db.GetOpenEvents(ctx, now, 10, nil)
		require.NoError(t, err)

		titles := make([]string, 0, len(result.Data))
		for _, e := range result.Data {
			titles = append(titles, e.Title)
		}
		assert.ElementsMatch(t, []string{"Open", "Open ended"}, titles)
		assert.False(t, result.HasNextPage)
	})

	t.Run("paginates with a cursor", func(t *testing.T) {
		resetTable(ctx)

		for range 3 {
			e := testEvent()
			require.NoError(t, db.CreateEvent(ctx, e))
		}

		first, err := db.GetOpenEvents(ctx, now, 2, nil)
		require.NoError(t, err)
		assert.Len(t, first.Data, 2)
		assert.True(t, first.HasNextPage)
		require.NotNil(t, first.Cursor)

		second, err := db.GetOpenEvents(ctx, now, 2, first.Cursor)
		require.NoError(t, err)
		assert.Len(t, second.Data, 1)
		assert.False(t, second.HasNextPage)
	})

	t.Run("closed events between pages don't end the listing early", func(t *testing.T) {
		resetTable(ctx)

		// Interleave a closed event among open ones, newest first, so the
		// filter shrinks the first evaluated page below the limit.
		makeEvent := func(title string, date time.Time, close *time.Time) {
			e := testEvent()
			e.Title = title
			e.EventDate = &date
			e.RegistrationCloseTime = close
			require.NoError(t, db.CreateEvent(ctx, e))
		}
		open := ptr.Time(now.Add(24 * time.Hour))
		makeEvent("Open 1", now.Add(4*time.Hour), open)
		makeEvent("Closed", now.Add(3*time.Hour), ptr.Time(now.Add(-time.Hour)))
		makeEvent("Open 2", now.Add(2*time.Hour), open)
		makeEvent("Open 3", now.Add(1*time.Hour), open)

		first, err := db.GetOpenEvents(ctx, now, 2, nil)
		require.NoError(t, err)
		titles := make([]string, 0, len(first.Data))
		for _, e := range first.Data {
			titles = append(titles, e.Title)
		}
		assert.Equal(t, []string{"Open 1", "Open 2"}, titles)
		assert.True(t, first.HasNextPage)
		require.NotNil(t, first.Cursor)

		second, err := db.GetOpenEvents(ctx, now, 2, first.Cursor)
		require.NoError(t, err)
		require.Len(t, second.Data, 1)
		assert.Equal(t, "Open 3", second.Data[0].Title)
		assert.False(t, second.HasNextPage)
	})

	t.Run("a fully closed first page doesn't hide later open events", func(t *testing.T) {
		resetTable(ctx)

		for i := range 3 {
			e := testEvent()
			e.Title = "Closed"
			e.EventDate = ptr.Time(now.Add(time.Duration(10+i) * time.Hour))
			e.RegistrationCloseTime = ptr.Time(now.Add(-time.Hour))
			require.NoError(t, db.CreateEvent(ctx, e))
		}
		openEvent := testEvent()
		openEvent.Title = "Open"
		openEvent.EventDate = ptr.Time(now.Add(time.Hour))
		require.NoError(t, db.CreateEvent(ctx, openEvent))

		result, err := db.GetOpenEvents(ctx, now, 2, nil)
		require.NoError(t, err)
		require.Len(t, result.Data, 1)
		assert.Equal(t, "Open", result.Data[0].Title)
		assert.False(t, result.HasNextPage)
	})

	t.Run("sub-second deadlines compare numerically", func(t *testing.T) {
		resetTable(ctx)

		// As an RFC3339 string "T09:00:00.5Z" sorts below "T09:00:00Z", which
		// would wrongly drop a deadline half a second in the future.
		e := testEvent()
		e.Title = "Closing soon"
		e.RegistrationCloseTime = ptr.Time(now.Add(500 * time.Millisecond))
		require.NoError(t, db.CreateEvent(ctx, e))

		result, err := db.GetOpenEvents(ctx, now, 10, nil)
		require.NoError(t, err)
		require.Len(t, result.Data, 1)
		assert.Equal(t, "Closing soon", result.Data[0].Title)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		resetTable(ctx)

		_, err := db.GetOpenEvents(ctx, now, 10, ptr.String("not-a-cursor"))
		var eventErr *events.Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, events.REASON_INVALID_CURSOR, eventErr.Reason)
	})
}
