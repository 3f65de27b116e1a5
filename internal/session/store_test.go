package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/models"
)

func newTestStore(limit int) *Store {
	return NewStore(limit, zap.NewNop())
}

func TestStore_GetOrCreate(t *testing.T) {
	t.Run("unknown id allocates a new session with empty history", func(t *testing.T) {
		store := newTestStore(10)
		sess := store.GetOrCreate("never-seen", 0)

		require.NotNil(t, sess)
		assert.Equal(t, "never-seen", sess.ID)
		assert.Empty(t, sess.History())
		assert.Equal(t, 1, store.ActiveCount())
	})

	t.Run("empty id generates a fresh uuid", func(t *testing.T) {
		store := newTestStore(10)
		first := store.GetOrCreate("", 0)
		second := store.GetOrCreate("", 0)

		assert.NotEmpty(t, first.ID)
		assert.NotEmpty(t, second.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 2, store.ActiveCount())
	})

	t.Run("existing session is returned unchanged", func(t *testing.T) {
		store := newTestStore(10)
		sess := store.GetOrCreate("s1", 42)
		sess.Append(models.RoleUser, "hola")

		again := store.GetOrCreate("s1", 99)
		assert.Same(t, sess, again)
		assert.Equal(t, int64(42), again.UserID)
		assert.Len(t, again.History(), 1)
	})
}

func TestSession_Append(t *testing.T) {
	t.Run("history is append-only and ordered", func(t *testing.T) {
		store := newTestStore(10)
		sess := store.GetOrCreate("s1", 0)

		sess.Append(models.RoleUser, "primero")
		sess.Append(models.RoleAssistant, "segundo")
		sess.Append(models.RoleUser, "tercero")

		history := sess.History()
		require.Len(t, history, 3)
		assert.Equal(t, "primero", history[0].Content)
		assert.Equal(t, "segundo", history[1].Content)
		assert.Equal(t, "tercero", history[2].Content)
		assert.False(t, history[1].Timestamp.Before(history[0].Timestamp))
	})

	t.Run("system messages do not enter the window", func(t *testing.T) {
		store := newTestStore(10)
		sess := store.GetOrCreate("s1", 0)

		sess.Append(models.RoleSystem, "instrucciones")
		sess.Append(models.RoleUser, "hola")

		assert.Len(t, sess.History(), 2)
		require.Len(t, sess.Window(), 1)
		assert.Equal(t, models.RoleUser, sess.Window()[0].Role)
	})
}

func TestSession_WindowEviction(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		appended int
		want     int
	}{
		{name: "under the cap", limit: 6, appended: 4, want: 4},
		{name: "exactly at the cap", limit: 6, appended: 6, want: 6},
		{name: "over the cap", limit: 6, appended: 15, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(tt.limit)
			sess := store.GetOrCreate("s1", 0)

			for i := 0; i < tt.appended; i++ {
				role := models.RoleUser
				if i%2 == 1 {
					role = models.RoleAssistant
				}
				sess.Append(role, fmt.Sprintf("msg-%d", i))
			}

			window := sess.Window()
			require.Len(t, window, tt.want)

			// Oldest first, holding the most recent entries.
			for i, msg := range window {
				assert.Equal(t, fmt.Sprintf("msg-%d", tt.appended-tt.want+i), msg.Content)
			}

			// Full history is never trimmed.
			assert.Equal(t, tt.appended, sess.MessageCount())
		})
	}
}

func TestStore_Delete(t *testing.T) {
	t.Run("removes all session state", func(t *testing.T) {
		store := newTestStore(10)
		sess := store.GetOrCreate("s1", 0)
		sess.Append(models.RoleUser, "hola")

		store.Delete("s1")
		assert.Equal(t, 0, store.ActiveCount())
		assert.Empty(t, store.History("s1"))
	})

	t.Run("deleting an unknown id is a no-op", func(t *testing.T) {
		store := newTestStore(10)
		assert.NotPanics(t, func() { store.Delete("nope") })
		assert.Equal(t, 0, store.ActiveCount())
	})
}

func TestStore_History_UnknownSession(t *testing.T) {
	store := newTestStore(10)
	history := store.History("missing")
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
