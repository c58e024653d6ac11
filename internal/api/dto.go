package api

import (
	"github.com/safar/maison-store/internal/checkout"
	"github.com/safar/maison-store/internal/models"
)

type productRequest struct {
	ProductID int64 `json:"product_id"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type statusRequest struct {
	Status         models.OrderStatus `json:"status"`
	TrackingNumber string             `json:"tracking_number"`
}

type paymentIntentRequest struct {
	Amount int64 `json:"amount"`
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Quote checkout.Totals   `json:"quote"`
}

type wishlistResponse struct {
	Items []models.Product `json:"items"`
	Count int              `json:"count"`
}
