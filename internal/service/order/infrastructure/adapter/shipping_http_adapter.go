package adapter

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

type addressPayload struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

type contentPayload struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Weight    decimal.Decimal `json:"weight"`
}

type packagePayload struct {
	PackageID   string           `json:"package_id"`
	Destination addressPayload   `json:"destination"`
	Contents    []contentPayload `json:"contents"`
}

type shipmentRatesRequest struct {
	OrderID  string           `json:"order_id"`
	Currency string           `json:"currency"`
	Packages []packagePayload `json:"packages"`
}

type ratePayload struct {
	ShippingMethodID int64           `json:"shipping_method_id"`
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	Selected         bool            `json:"selected"`
}

type shipmentRatesResponse struct {
	OrderID  string `json:"order_id"`
	Packages []struct {
		PackageID string        `json:"package_id"`
		Rates     []ratePayload `json:"rates"`
	} `json:"packages"`
}

// ShippingHTTPAdapter 实现了 port.ShippingService，每个发货单作为一个包裹发给 shipping-service
type ShippingHTTPAdapter struct {
	client *httpclient.Client
}

func NewShippingHTTPAdapter(client *httpclient.Client) *ShippingHTTPAdapter {
	return &ShippingHTTPAdapter{client: client}
}

func (a *ShippingHTTPAdapter) QuoteShipments(ctx context.Context, order *domain.Order) ([]port.ShipmentQuote, error) {
	req := shipmentRatesRequest{
		OrderID:  order.ID,
		Currency: order.Currency,
		Packages: make([]packagePayload, 0, len(order.Shipments)),
	}
	dest := addressPayload(order.ShipAddress)
	for _, s := range order.Shipments {
		pkg := packagePayload{PackageID: s.Number, Destination: dest}
		for _, li := range s.LineItems {
			pkg.Contents = append(pkg.Contents, contentPayload(li))
		}
		req.Packages = append(req.Packages, pkg)
	}

	var resp shipmentRatesResponse
	if err := a.client.PostJSON(ctx, constants.ShippingService, constants.PathShipmentRates, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Packages) != len(order.Shipments) {
		return nil, errors.Errorf("shipping-service returned %d packages for %d shipments", len(resp.Packages), len(order.Shipments))
	}

	quotes := make([]port.ShipmentQuote, 0, len(resp.Packages))
	for _, p := range resp.Packages {
		q := port.ShipmentQuote{ShipmentNumber: p.PackageID}
		for _, r := range p.Rates {
			q.Rates = append(q.Rates, domain.ShippingRate(r))
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
