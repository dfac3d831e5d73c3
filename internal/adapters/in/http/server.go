// Package http exposes the order pipeline over HTTP: order intake, the Event
// Grid push webhooks of the event-triggered stages and read-only views of the
// ledger and the delivery runs.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/application/usecases/stages"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Intake response bodies.
const (
	OrderPlacedMessage       = "Order placed successfully!"
	missingFieldMessage      = "Missing required field: %s"
	invalidBodyMessage       = "Invalid request body"
	publishFailedMessage     = "Failed to send event to Event Grid: %s"
	internalErrorMessage     = "Internal Server Error: %v"
	invalidOrderMessage      = "Invalid order data: %s"
	maxIntakeBodyBytes       = 1 << 20
	deliveryNotFoundMessage  = "No delivery in progress for order %s"
	deliveriesFailedMessage  = "Failed to retrieve deliveries"
	inventoryFailedMessage   = "Failed to retrieve inventory"
	webhookBodyFailedMessage = "Invalid event batch"
	travelTimeMessage        = "Estimated travel time to delivery address: %s minutes"
	travelTimeFailedMessage  = "Error calculating travel time: %s"
	addressNotFoundMessage   = "Address not found."
	routeNotFoundMessage     = "No route to the delivery address."
)

// travelTimeStatus marks an intake request that asks for a travel-time
// estimate instead of placing an order.
const travelTimeStatus = "ready_to_pickup"

// OrderReceiver accepts orders posted to the intake.
type OrderReceiver interface {
	Handle(ctx context.Context, cmd commands.ReceiveOrderCommand) error
}

// TravelTimeEstimator answers ready_to_pickup intake requests.
type TravelTimeEstimator interface {
	Handle(ctx context.Context, query queries.EstimateTravelTimeQuery) (queries.EstimateTravelTimeQueryResponse, error)
}

// StageDispatcher runs the event-triggered stages. Both methods fail open.
type StageDispatcher interface {
	FieldService(ctx context.Context, env event.Envelope)
	Warehouse(ctx context.Context, env event.Envelope)
}

// DeliveryCanceller stops a running delivery.
type DeliveryCanceller interface {
	Cancel(orderID string) error
}

// InventoryReader serves the stock snapshot.
type InventoryReader interface {
	Handle(ctx context.Context, query queries.GetInventoryQuery) ([]queries.GetInventoryQueryResponse, error)
}

// DeliveriesReader lists running deliveries.
type DeliveriesReader interface {
	Handle(ctx context.Context, query queries.GetActiveDeliveriesQuery) ([]queries.GetActiveDeliveriesQueryResponse, error)
}

// Server holds the handlers behind the HTTP routes.
type Server struct {
	receiveOrder OrderReceiver
	travelTime   TravelTimeEstimator
	stages       StageDispatcher
	deliveries   DeliveryCanceller

	getInventory  InventoryReader
	getDeliveries DeliveriesReader

	logger *slog.Logger
}

// NewServer binds the intake and admin handlers.
func NewServer(
	receiveOrder OrderReceiver,
	travelTime TravelTimeEstimator,
	stages StageDispatcher,
	deliveries DeliveryCanceller,
	getInventory InventoryReader,
	getDeliveries DeliveriesReader,
	logger *slog.Logger,
) *Server {
	return &Server{
		receiveOrder:  receiveOrder,
		travelTime:    travelTime,
		stages:        stages,
		deliveries:    deliveries,
		getInventory:  getInventory,
		getDeliveries: getDeliveries,
		logger:        logger.With("component", "http_server"),
	}
}

// CreateOrder handles POST /api/v1/orders. It accepts a bare order or an
// object with the order under "data", and fails closed. A ready_to_pickup
// request is answered with a travel-time estimate and publishes nothing.
func (s *Server) CreateOrder(c echo.Context) (err error) {
	ctx := c.Request().Context()
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "intake panic", "panic", r)
			err = c.String(http.StatusInternalServerError, fmt.Sprintf(internalErrorMessage, r))
		}
	}()

	raw, err := readBody(c, maxIntakeBodyBytes)
	if err != nil {
		return c.String(http.StatusBadRequest, invalidBodyMessage)
	}

	data, err := event.DecodeOrderData(unwrapData(raw))
	if err != nil {
		var missing *errs.ValueIsRequiredError
		switch {
		case errors.As(err, &missing):
			return c.String(http.StatusBadRequest, fmt.Sprintf(missingFieldMessage, missing.ParamName))
		case errors.Is(err, event.ErrInvalidMaterialFormat):
			return c.String(http.StatusBadRequest, event.InvalidMaterialMessage)
		default:
			return c.String(http.StatusBadRequest, invalidBodyMessage)
		}
	}

	if strings.EqualFold(strings.TrimSpace(data.Status), travelTimeStatus) {
		return s.estimateTravelTime(c, data.DeliveryAddress)
	}

	o, err := data.ToOrder()
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf(invalidOrderMessage, err))
	}

	cmd, err := commands.NewReceiveOrderCommand(o)
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf(invalidOrderMessage, err))
	}

	if handleErr := s.receiveOrder.Handle(ctx, cmd); handleErr != nil {
		var te *errs.TransportError
		switch {
		case errors.As(handleErr, &te):
			return c.String(te.StatusCode, fmt.Sprintf(publishFailedMessage, te.Body))
		case errors.Is(handleErr, errs.ErrValueIsInvalid):
			return c.String(http.StatusBadRequest, fmt.Sprintf(invalidOrderMessage, handleErr))
		default:
			s.logger.ErrorContext(ctx, "intake failed", "order_id", o.ID(), "error", handleErr)
			return c.String(http.StatusInternalServerError, fmt.Sprintf(internalErrorMessage, handleErr))
		}
	}

	return c.String(http.StatusOK, OrderPlacedMessage)
}

func (s *Server) estimateTravelTime(c echo.Context, address string) error {
	ctx := c.Request().Context()

	query, err := queries.NewEstimateTravelTimeQuery(address)
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf(invalidOrderMessage, err))
	}

	estimate, err := s.travelTime.Handle(ctx, query)
	if err != nil {
		var lookup *errs.LookupError
		if errors.As(err, &lookup) {
			s.logger.InfoContext(ctx, "travel time lookup failed", "address", query.Address(), "error", err)
			if lookup.Resource == "address" {
				return c.String(http.StatusNotFound, addressNotFoundMessage)
			}
			return c.String(http.StatusNotFound, routeNotFoundMessage)
		}
		s.logger.ErrorContext(ctx, "travel time failed", "address", query.Address(), "error", err)
		return c.String(http.StatusInternalServerError, fmt.Sprintf(travelTimeFailedMessage, err))
	}

	minutes := strconv.FormatFloat(estimate.Minutes, 'f', -1, 64)
	return c.String(http.StatusOK, fmt.Sprintf(travelTimeMessage, minutes))
}

// FieldServiceEvents handles POST /api/v1/events/fieldservice.
func (s *Server) FieldServiceEvents(c echo.Context) error {
	return s.webhook(c, stages.StageFieldService, s.stages.FieldService)
}

// WarehouseEvents handles POST /api/v1/events/warehouse.
func (s *Server) WarehouseEvents(c echo.Context) error {
	return s.webhook(c, stages.StageWarehouse, s.stages.Warehouse)
}

// CancelDelivery handles DELETE /api/v1/deliveries/:order_id.
func (s *Server) CancelDelivery(c echo.Context) error {
	orderID := c.Param("order_id")
	if err := s.deliveries.Cancel(orderID); err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return c.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: fmt.Sprintf(deliveryNotFoundMessage, orderID),
			})
		}
		return c.JSON(http.StatusInternalServerError, Error{Code: http.StatusInternalServerError, Message: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetDeliveries handles GET /api/v1/deliveries.
func (s *Server) GetDeliveries(c echo.Context) error {
	runs, err := s.getDeliveries.Handle(c.Request().Context(), queries.NewGetActiveDeliveriesQuery())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: deliveriesFailedMessage,
		})
	}

	response := make([]Delivery, len(runs))
	for i, run := range runs {
		response[i] = Delivery{OrderID: run.OrderID, Sent: run.Sent, Total: run.Total, StartedAt: run.StartedAt}
	}
	return c.JSON(http.StatusOK, response)
}

// GetInventory handles GET /api/v1/inventory.
func (s *Server) GetInventory(c echo.Context) error {
	items, err := s.getInventory.Handle(c.Request().Context(), queries.NewGetInventoryQuery())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: inventoryFailedMessage,
		})
	}

	response := make([]InventoryItem, len(items))
	for i, item := range items {
		response[i] = InventoryItem{MaterialID: item.MaterialID, Quantity: item.Quantity}
	}
	return c.JSON(http.StatusOK, response)
}

// Health always answers 200.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}
