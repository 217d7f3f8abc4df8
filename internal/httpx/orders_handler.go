package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/markov84/MarkLight-Ltd/internal/auth"
	"github.com/markov84/MarkLight-Ltd/internal/inventory"
	kafkax "github.com/markov84/MarkLight-Ltd/internal/kafka"
	"github.com/markov84/MarkLight-Ltd/internal/orders"
	"github.com/markov84/MarkLight-Ltd/internal/redisx"
)

type OrdersHandler struct {
	Service  *orders.Service
	Repo     *orders.Repo
	Producer *kafkax.Producer
	Redis    *redis.Client
	Auth     *auth.Middleware
	Name     string
	Log      *slog.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)
		r.Post("/orders", h.placeOrder)
		r.Get("/orders/my", h.myOrders)
		r.With(h.Auth.RequireAdmin).Get("/orders/all", h.allOrders)
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req orders.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Opt-in double-submit fence: a repeated Idempotency-Key within the TTL
	// is refused instead of placing a second order.
	var idemKey string
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderPlace, claims.UserID, k)
		fresh, err := redisx.SetNXOnce(ctx, h.Redis, idemKey, redisx.TTLIdempotency)
		if err == nil && !fresh {
			writeMsg(w, http.StatusConflict, "order already submitted")
			return
		}
	}

	o, err := h.Service.PlaceOrder(ctx, claims.UserID, req)
	if err != nil {
		if idemKey != "" {
			// nothing was placed; let the caller retry with the same key
			_ = h.Redis.Del(context.WithoutCancel(ctx), idemKey).Err()
		}
		switch {
		case errors.Is(err, orders.ErrInvalidRequest), errors.Is(err, orders.ErrOrderRejected):
			writeMsg(w, http.StatusBadRequest, err.Error())
		default:
			var drift *inventory.InconsistencyError
			if errors.As(err, &drift) {
				h.Log.Error("placement left inconsistent stock", "user_id", claims.UserID, "err", err)
			}
			writeMsg(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"`+string(o.Payment.Status)+`"}`, redisx.TTLStatusCache).Err()

	h.publishPlaced(o, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) publishPlaced(o *orders.Order, traceID string) {
	items := make([]orders.OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.OrderPlacedItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:         o.ID,
			UserID:          o.UserID,
			CustomerName:    o.CustomerName,
			Email:           o.Email,
			Items:           items,
			GrandTotalCents: o.GrandTotalCents,
			Currency:        o.Currency,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Repo.ListByUser(ctx, claims.UserID)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	// the caller knows who they are
	for i := range list {
		list[i].UserEmail = ""
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) allOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.ListAll(ctx)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
