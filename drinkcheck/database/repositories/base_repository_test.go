package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	br := &BaseRepository{}

	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, br.HandleError("get", "user", nil))
	})

	t.Run("no rows becomes NotFoundError", func(t *testing.T) {
		err := br.HandleErrorWithID("get", "user", "12345", sql.ErrNoRows)

		var nfe *NotFoundError
		assert.True(t, errors.As(err, &nfe))
		assert.Equal(t, "user", nfe.Entity)
		assert.Equal(t, "12345", nfe.ID)
	})

	t.Run("other errors become RepositoryError", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := br.HandleError("update", "chain", cause)

		var re *RepositoryError
		assert.True(t, errors.As(err, &re))
		assert.Equal(t, "update", re.Operation)
		assert.ErrorIs(t, err, cause, "the cause must stay reachable through Unwrap")
	})
}
