package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablewarden/tablewarden/pkg/errors"
)

func TestIOErrorWrapping(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.WrapIO("write", "/data/snapshots/acme_data.csv", cause)

	assert.Contains(t, err.Error(), "write")
	assert.Contains(t, err.Error(), "acme_data.csv")
	assert.ErrorIs(t, err, cause)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Operation)
}

func TestInProgressErrorIsSentinel(t *testing.T) {
	err := &errors.InProgressError{Source: "acme"}

	assert.True(t, errors.IsInProgress(err))
	assert.ErrorIs(t, err, errors.ErrInProgress)
	assert.Contains(t, err.Error(), "acme")
}

func TestSchemaErrorIsInvalidInput(t *testing.T) {
	err := &errors.SchemaError{Source: "acme", Sheet: "data", Message: "no columns"}

	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "sheet data")
}

func TestSourceErrorUnwrapsCause(t *testing.T) {
	cause := &errors.ArtifactWriteError{Source: "acme", Err: stderrors.New("bad sheet name")}
	err := errors.WrapSource("acme", "reconcile", cause)

	var artErr *errors.ArtifactWriteError
	assert.ErrorAs(t, err, &artErr)
	assert.Contains(t, err.Error(), "reconcile failed for source acme")
}

func TestMetadataWriteErrorMessage(t *testing.T) {
	err := &errors.MetadataWriteError{Path: "metadata.json", Err: stderrors.New("nope")}
	assert.Contains(t, err.Error(), "metadata.json")
}
