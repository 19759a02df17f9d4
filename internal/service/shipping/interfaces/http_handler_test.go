package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/shipping/application"
	"storefront/internal/service/shipping/domain"
)

type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) EstimateRates(ctx context.Context, req *application.EstimateRatesRequest) (*application.EstimateRatesResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*application.EstimateRatesResponse)
	return resp, args.Error(1)
}

func (m *mockEstimator) EstimateShipments(ctx context.Context, req *application.EstimateShipmentsRequest) (*application.EstimateShipmentsResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*application.EstimateShipmentsResponse)
	return resp, args.Error(1)
}

func serve(h *ShippingHandler, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestShippingRatesEndpoint(t *testing.T) {
	svc := new(mockEstimator)
	svc.On("EstimateRates", mock.Anything, mock.MatchedBy(func(req *application.EstimateRatesRequest) bool {
		return req.OrderID == "R100" && req.Destination.Country == "US" && len(req.Contents) == 1
	})).Return(&application.EstimateRatesResponse{
		OrderID: "R100",
		Rates: []application.ShippingRateDTO{
			{ShippingMethodID: 3, Name: "USPS", Cost: decimal.RequireFromString("4.50"), Currency: "USD", Selected: true},
		},
	}, nil)

	rec := serve(NewShippingHandler(svc), http.MethodPost, "/shipping_rates",
		`{"order_id":"R100","currency":"USD","destination":{"country":"US","state":"NY"},"contents":[{"variant_id":1,"quantity":1,"price":"10.00"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp application.EstimateRatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rates, 1)
	assert.True(t, resp.Rates[0].Selected)
	assert.Equal(t, "4.5", resp.Rates[0].Cost.String())
	svc.AssertExpectations(t)
}

func TestShippingRatesErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{errors.Wrap(domain.ErrPackageInvalid, "currency is required"), http.StatusBadRequest},
		{domain.ErrInvalidDisplay, http.StatusBadRequest},
		{errors.Wrapf(domain.ErrShippingMethodNotFound, "id %d", 9), http.StatusNotFound},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := new(mockEstimator)
		svc.On("EstimateRates", mock.Anything, mock.Anything).Return(nil, tt.err)
		rec := serve(NewShippingHandler(svc), http.MethodPost, "/shipping_rates", `{}`)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

func TestShippingRatesRejectsMalformedBody(t *testing.T) {
	svc := new(mockEstimator)
	rec := serve(NewShippingHandler(svc), http.MethodPost, "/shipping_rates", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "EstimateRates", mock.Anything, mock.Anything)
}

func TestShipmentRatesEndpoint(t *testing.T) {
	svc := new(mockEstimator)
	svc.On("EstimateShipments", mock.Anything, mock.Anything).Return(&application.EstimateShipmentsResponse{
		OrderID:  "R100",
		Packages: []application.EstimateRatesResponse{{PackageID: "P1"}, {PackageID: "P2"}},
	}, nil)
	h := NewShippingHandler(svc)

	rec := serve(h, http.MethodPost, "/shipments/rates", `{"order_id":"R100","packages":[{"package_id":"P1"},{"package_id":"P2"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"package_id":"P2"`)

	rec = serve(h, http.MethodPost, "/shipments/rates", `{"order_id":"R100","packages":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShippingRatesRequiresPost(t *testing.T) {
	rec := serve(NewShippingHandler(new(mockEstimator)), http.MethodGet, "/shipping_rates", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBackOfficeRatesDisabled(t *testing.T) {
	svc := new(mockEstimator)
	h := NewShippingHandler(svc, WithBackOfficeRates(false))

	rec := serve(h, http.MethodPost, "/shipping_rates", `{"order_id":"R100","display":"both"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodPost, "/shipments/rates", `{"order_id":"R100","packages":[{"package_id":"P1","display":"both"}]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "EstimateRates", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "EstimateShipments", mock.Anything, mock.Anything)
}
