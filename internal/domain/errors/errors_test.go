package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadKeepsSentinelWithCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Upload("pin request failed", cause)

	assert.True(t, stderrors.Is(err, ErrUpload))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, http.StatusBadGateway, err.Code)

	// Without a cause the class is still detectable.
	bare := Upload("pin failed with status 500", nil)
	assert.True(t, stderrors.Is(bare, ErrUpload))
}

func TestSubmissionKeepsSentinelWithCause(t *testing.T) {
	cause := stderrors.New("nonce too low")
	err := Submission("transaction rejected", cause)

	assert.True(t, stderrors.Is(err, ErrSubmission))
	assert.True(t, stderrors.Is(err, cause))

	bare := Submission("transaction reverted", nil)
	assert.True(t, stderrors.Is(bare, ErrSubmission))
}

func TestAppErrorMessagePrecedence(t *testing.T) {
	err := Upload("pin request failed", stderrors.New("io timeout"))
	assert.Equal(t, "pin request failed", err.Error())

	anon := &AppError{Err: stderrors.New("raw cause")}
	assert.Equal(t, "raw cause", anon.Error())
}
