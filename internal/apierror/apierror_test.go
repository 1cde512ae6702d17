package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusForbidden, KindAuthz.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusInternalServerError, KindUnavailable.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}

func TestFrom_FindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("upsert: %w", Conflict("Registro duplicado", errors.New("23505")))

	e := From(wrapped)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, "Registro duplicado", e.Msg)
	assert.True(t, Is(wrapped, KindConflict))
}

func TestFrom_PlainErrorBecomesInternal(t *testing.T) {
	e := From(errors.New("pq: connection refused"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.NotContains(t, e.Msg, "pq")
}
