package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftwise/internal/shared"
)

type listResponse struct {
	Workers    []ProfileWithAssignments `json:"workers"`
	Pagination shared.Pagination        `json:"pagination"`
}

func listWorkers(t *testing.T, h *Handler, target string) listResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	h.handleList(rr, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestListWorkersPaginates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	actor := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, actor, CreateInput{
			Email:    fmt.Sprintf("worker%d@example.test", i),
			Password: "long enough",
			FullName: fmt.Sprintf("Worker %d", i),
		})
		require.NoError(t, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, svc)

	first := listWorkers(t, h, "/workers?page=1&per_page=2")
	require.Len(t, first.Workers, 2)
	require.Equal(t, shared.Pagination{Page: 1, PerPage: 2, Total: 3, TotalPages: 2}, first.Pagination)

	second := listWorkers(t, h, "/workers?page=2&per_page=2")
	require.Len(t, second.Workers, 1)
	require.Equal(t, 2, second.Pagination.Page)

	past := listWorkers(t, h, "/workers?page=5&per_page=2")
	require.Empty(t, past.Workers)

	defaults := listWorkers(t, h, "/workers")
	require.Len(t, defaults.Workers, 3)
	require.Equal(t, shared.Pagination{Page: 1, PerPage: 20, Total: 3, TotalPages: 1}, defaults.Pagination)
}
