// Package inventory talks to the product-inventory service that owns device records.
package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/shared"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	devicePath   = "/equipos/equipo/{id}"
	markSoldPath = "/equipos/{id}"
	stateSold    = "Vendido"
)

type Client struct {
	http   *resty.Client
	tracer trace.Tracer
}

func NewClient(cfg config.InventoryConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.ServiceToken != "" {
		httpClient.SetAuthToken(cfg.ServiceToken)
	}

	return &Client{
		http:   httpClient,
		tracer: otel.Tracer("inventory-client"),
	}
}

// deviceResponse mirrors the inventory service's device document.
type deviceResponse struct {
	ID            string           `json:"_id"`
	Product       json.RawMessage  `json:"producto"`
	BatteryHealth *decimal.Decimal `json:"condicionBateria"`
	Condition     string           `json:"condicion"`
	Grade         string           `json:"grado"`
	State         string           `json:"estado"`
	Price         decimal.Decimal  `json:"precio"`
	Details       []string         `json:"detalles"`
	Accessories   []string         `json:"accesorios"`
}

type markSoldRequest struct {
	State  string `json:"estado"`
	SoldOn string `json:"fechaVenta"`
}

func (c *Client) GetDevice(ctx context.Context, deviceID string) (*shared.Device, error) {
	ctx, span := c.tracer.Start(ctx, "inventory.GetDevice")
	defer span.End()
	span.SetAttributes(attribute.String("device.id", deviceID))

	var body deviceResponse
	resp, err := c.request(ctx).
		SetPathParam("id", deviceID).
		SetResult(&body).
		Get(devicePath)
	if err := checkResponse(span, "get device", resp, err); err != nil {
		return nil, err
	}

	return body.toDevice(deviceID), nil
}

func (c *Client) MarkSold(ctx context.Context, deviceID string, soldOn string) error {
	ctx, span := c.tracer.Start(ctx, "inventory.MarkSold")
	defer span.End()
	span.SetAttributes(
		attribute.String("device.id", deviceID),
		attribute.String("device.sold_on", soldOn),
	)

	resp, err := c.request(ctx).
		SetPathParam("id", deviceID).
		SetBody(markSoldRequest{State: stateSold, SoldOn: soldOn}).
		Put(markSoldPath)
	return checkResponse(span, "mark device sold", resp, err)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req
}

func checkResponse(span trace.Span, op string, resp *resty.Response, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return infra.WrapRepoErr("inventory: "+op, err, infra.KindUpstreamFailure)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsSuccess() {
		return nil
	}

	statusErr := errs.Newf("unexpected status %d", resp.StatusCode())
	span.RecordError(statusErr)
	span.SetStatus(codes.Error, statusErr.Error())
	if resp.StatusCode() == http.StatusNotFound {
		return infra.WrapRepoErr("inventory: "+op, statusErr, infra.KindNotFound)
	}
	return infra.WrapRepoErr("inventory: "+op, statusErr, infra.KindUpstreamFailure)
}

func (d deviceResponse) toDevice(requestedID string) *shared.Device {
	id := d.ID
	if id == "" {
		id = requestedID
	}
	return &shared.Device{
		ID:            id,
		ProductID:     productID(d.Product),
		Condition:     d.Condition,
		Grade:         d.Grade,
		State:         d.State,
		BatteryHealth: d.BatteryHealth,
		Price:         d.Price,
		Details:       d.Details,
		Accessories:   d.Accessories,
	}
}

// productID accepts either a bare reference or a populated product document.
func productID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var populated struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &populated); err == nil {
		return populated.ID
	}
	return ""
}
