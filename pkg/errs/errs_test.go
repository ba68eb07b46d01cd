package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncErrorMatching(t *testing.T) {
	cause := errors.New("watcher closed")
	err := fmt.Errorf("browse: %w", SyncError{Scope: "items", Err: cause})

	assert.ErrorIs(t, err, ErrSync)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrWrite)
	assert.Equal(t, "browse: sync items failed: watcher closed", err.Error())

	var se SyncError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "items", se.Scope)
}

func TestSendRejectedReasons(t *testing.T) {
	empty := SendRejected{Reason: RejectEmpty}

	assert.ErrorIs(t, empty, ErrSendRejected)
	assert.ErrorIs(t, empty, ErrEmptyMessage)
	assert.NotErrorIs(t, empty, ErrUnauthenticated)
	assert.ErrorIs(t, ErrUnauthenticated, ErrSendRejected)
}

func TestWriteFailureUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := WriteFailure{Op: "append message", Err: cause}

	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "append message failed: disk full", err.Error())
}

func TestNotFound(t *testing.T) {
	err := fmt.Errorf("get: %w", NotFoundError{Resource: "item abc"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "get: item abc not found", err.Error())
	assert.Equal(t, "not found", ErrNotFound.Error())
}
