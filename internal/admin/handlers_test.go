package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kripa621/swapit-io/internal/items"
	"github.com/Kripa621/swapit-io/internal/messages"
	"github.com/Kripa621/swapit-io/internal/trades"
)

type mockModeration struct {
	pending  []*items.Item
	reviewed map[string]string
}

func (m *mockModeration) ListPendingApproval(ctx context.Context) ([]*items.Item, error) {
	return m.pending, nil
}

func (m *mockModeration) Review(ctx context.Context, id, decision string) (*items.Item, error) {
	if decision != items.ApprovalApproved && decision != items.ApprovalRejected {
		return nil, items.ErrInvalidDecision
	}
	if id == "itm_missing000000000000000000" {
		return nil, items.ErrItemNotFound
	}
	if m.reviewed == nil {
		m.reviewed = make(map[string]string)
	}
	m.reviewed[id] = decision
	return &items.Item{ID: id, ApprovalStatus: decision}, nil
}

type mockAdjudication struct {
	refunds  []*trades.Trade
	resolved []string
}

func (m *mockAdjudication) ListPendingRefunds(ctx context.Context) ([]*trades.Trade, error) {
	return m.refunds, nil
}

func (m *mockAdjudication) ConfirmRefund(ctx context.Context, id string) (*trades.Trade, error) {
	for _, t := range m.refunds {
		if t.ID == id {
			t.EscrowHeld = false
			return t, nil
		}
	}
	return nil, trades.ErrNoEscrowToRefund
}

func (m *mockAdjudication) ListPendingCreditReview(ctx context.Context) ([]*trades.Trade, error) {
	return nil, nil
}

func (m *mockAdjudication) ApproveCredits(ctx context.Context, id string) (*trades.Trade, error) {
	return nil, trades.ErrCreditsNotInReview
}

func (m *mockAdjudication) ListDisputed(ctx context.Context) ([]*trades.Trade, error) {
	return nil, nil
}

func (m *mockAdjudication) ResolveDispute(ctx context.Context, id string) (*trades.Trade, error) {
	m.resolved = append(m.resolved, id)
	return &trades.Trade{ID: id, Status: trades.StatusRejected}, nil
}

type mockTranscripts struct {
	lines []*messages.Message
}

func (m *mockTranscripts) Transcript(ctx context.Context, tradeID string) ([]*messages.Message, error) {
	if tradeID == "trd_missing00000000000000000" {
		return nil, trades.ErrTradeNotFound
	}
	return m.lines, nil
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/v1"))
	return r
}

func TestListPendingItems(t *testing.T) {
	h := NewHandler().WithItemModeration(&mockModeration{
		pending: []*items.Item{{ID: "itm_aaaaaaaaaaaaaaaaaaaaaaaa"}},
	})
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/items/pending", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "itm_aaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestReviewItemValidatesDecision(t *testing.T) {
	mod := &mockModeration{}
	r := newTestRouter(NewHandler().WithItemModeration(mod))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/items/itm_aaaaaaaaaaaaaaaaaaaaaaaa/review",
		strings.NewReader(`{"decision":"maybe"}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/items/itm_aaaaaaaaaaaaaaaaaaaaaaaa/review",
		strings.NewReader(`{"decision":"approved"}`))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", mod.reviewed["itm_aaaaaaaaaaaaaaaaaaaaaaaa"])
}

func TestConfirmRefundMapsPreconditionFailure(t *testing.T) {
	adj := &mockAdjudication{
		refunds: []*trades.Trade{{ID: "trd_aaaaaaaaaaaaaaaaaaaaaaaa", Status: trades.StatusCompleted, EscrowHeld: true}},
	}
	r := newTestRouter(NewHandler().WithTradeAdjudication(adj))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/refunds/trd_aaaaaaaaaaaaaaaaaaaaaaaa/confirm", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// A trade with no held escrow conflicts.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/refunds/trd_bbbbbbbbbbbbbbbbbbbbbbbb/confirm", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDisputeLogs(t *testing.T) {
	r := newTestRouter(NewHandler().WithChatTranscripts(&mockTranscripts{
		lines: []*messages.Message{{ID: "msg_aaaaaaaaaaaaaaaaaaaaaaaa", Text: "call me at [PHONE BLOCKED]"}},
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/disputes/trd_aaaaaaaaaaaaaaaaaaaaaaaa/logs", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[PHONE BLOCKED]")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/disputes/trd_missing00000000000000000/logs", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnconfiguredServicesReturn503(t *testing.T) {
	r := newTestRouter(NewHandler())

	for _, path := range []string{
		"/v1/admin/items/pending",
		"/v1/admin/refunds/pending",
		"/v1/admin/disputes",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}
