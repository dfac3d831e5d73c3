package http

import "time"

// Error is the JSON body of a failed non-intake request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InventoryItem is one row of the inventory response.
type InventoryItem struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

// Delivery is one running delivery with its progress.
type Delivery struct {
	OrderID string `json:"order_id"`
	// Sent counts waypoint updates already published out of Total.
	Sent      int       `json:"sent"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"started_at"`
}

// validationResponse answers the Event Grid subscription handshake.
type validationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}
