package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/safar/maison-store/internal/catalog"
	"github.com/safar/maison-store/internal/checkout"
	"github.com/safar/maison-store/internal/models"
	"github.com/safar/maison-store/internal/payment"
	"github.com/safar/maison-store/internal/store"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	store    *store.Store
	checkout *checkout.Service
	gateway  payment.Gateway
	logger   *log.Entry
}

func NewHandler(st *store.Store, co *checkout.Service, gateway payment.Gateway, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "api")
	}
	return &Handler{
		store:    st,
		checkout: co,
		gateway:  gateway,
		logger:   logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	respondJSON(w, http.StatusOK, catalog.List(category, page, pageSize))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, found := catalog.ByID(id)
	if !found {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	h.persisted(r, h.store.AddToCart(r.Context(), product))
	h.respondCart(w, http.StatusOK)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	h.persisted(r, h.store.UpdateQuantity(r.Context(), id, *req.Quantity))
	h.respondCart(w, http.StatusOK)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.persisted(r, h.store.RemoveFromCart(r.Context(), id))
	h.respondCart(w, http.StatusOK)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.persisted(r, h.store.ClearCart(r.Context()))
	h.respondCart(w, http.StatusOK)
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	h.respondWishlist(w, http.StatusOK)
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	h.persisted(r, h.store.AddToWishlist(r.Context(), product))
	h.respondWishlist(w, http.StatusOK)
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.persisted(r, h.store.RemoveFromWishlist(r.Context(), id))
	h.respondWishlist(w, http.StatusOK)
}

// MoveToCart answers with the cart, which is where the product ends up.
func (h *Handler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.persisted(r, h.store.MoveToCart(r.Context(), id))
	h.respondCart(w, http.StatusOK)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.checkout.Checkout(r.Context(), req)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, order)
	case errors.Is(err, store.ErrEmptyCart):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		respondError(w, http.StatusPaymentRequired, err.Error())
	default:
		h.requestLogger(r).WithError(err).Error("checkout failed")
		respondError(w, http.StatusInternalServerError, "Checkout failed")
	}
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.store.ListOrders(r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			respondError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.store.GetOrder(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.TrackingNumber)
	switch {
	case errors.Is(err, store.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, store.ErrInvalidStatusTransition):
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	h.persisted(r, err)

	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	intent, err := h.gateway.CreatePaymentIntent(r.Context(), req.Amount)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, intent)
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return models.Product{}, false
	}

	product, ok := catalog.ByID(req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return models.Product{}, false
	}
	return product, true
}

// persisted logs a failed snapshot write. The in-memory state already holds
// the change, so the request still succeeds.
func (h *Handler) persisted(r *http.Request, err error) {
	if err != nil {
		h.requestLogger(r).WithError(err).Warn("change not persisted")
	}
}

func (h *Handler) requestLogger(r *http.Request) *log.Entry {
	return h.logger.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	})
}

func (h *Handler) respondCart(w http.ResponseWriter, status int) {
	cart := h.store.CartSummary()

	respondJSON(w, status, cartResponse{
		Items: cart.Items,
		Count: cart.Count,
		Quote: h.checkout.Pricing().Quote(cart.Total),
	})
}

func (h *Handler) respondWishlist(w http.ResponseWriter, status int) {
	items := h.store.Wishlist()
	respondJSON(w, status, wishlistResponse{Items: items, Count: len(items)})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
