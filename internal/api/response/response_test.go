package response

import (
	"net/http"
	"testing"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Wrap(constant.NotFoundErr, "request 3"), http.StatusNotFound},
		{constant.AlreadyQueuedErr, http.StatusConflict},
		{constant.NotQueuedErr, http.StatusConflict},
		{constant.ConflictErr, http.StatusConflict},
		{constant.InvalidStateErr, http.StatusUnprocessableEntity},
		{errors.Wrap(constant.InvalidInputErr, "minutes"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
