package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"desk_server/adapter/out/persistence"
	"desk_server/pkg/apperr"
)

func TestRepoError(t *testing.T) {
	tests := []struct {
		name       string
		in         error
		wantCode   string
		wantStatus int
	}{
		{"not found", persistence.ErrNotFound, apperr.CodeNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get case: %w", persistence.ErrNotFound), apperr.CodeNotFound, http.StatusNotFound},
		{"duplicate", persistence.ErrDuplicate, apperr.CodeConflict, http.StatusConflict},
		{"invalid input", persistence.ErrInvalidInput, apperr.CodeBadRequest, http.StatusBadRequest},
		{"unknown error", errors.New("connection reset"), apperr.CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *apperr.AppError
			if !errors.As(repoError(tt.in), &appErr) {
				t.Fatal("repoError did not return an AppError")
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.Code, tt.wantCode)
			}
			if appErr.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", appErr.Status, tt.wantStatus)
			}
		})
	}
}

func TestRepoErrorKeepsCause(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := repoError(cause)
	if !errors.Is(err, cause) {
		t.Error("database error does not wrap its cause")
	}
}
