package lib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"psm/src/types"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// SSLCommerzGateway opens hosted checkout sessions against the SSLCommerz
// session API and validates transactions through the validator endpoint.
type SSLCommerzGateway struct {
	HTTPClient *http.Client
}

func (s *SSLCommerzGateway) Name() types.PaymentMethod {
	return types.METHOD_SSL_COMMERZ
}

func (s *SSLCommerzGateway) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (s *SSLCommerzGateway) baseURL() string {
	return os.Getenv("SSLCOMMERZ_BASE_URL")
}

func (s *SSLCommerzGateway) Initiate(ctx context.Context, input *InitiatePaymentInput) (*GatewaySession, error) {
	appHost := os.Getenv("APP_HOST")
	form := url.Values{}
	form.Set("store_id", os.Getenv("SSLCOMMERZ_STORE_ID"))
	form.Set("store_passwd", os.Getenv("SSLCOMMERZ_STORE_PASSWORD"))
	form.Set("total_amount", fmt.Sprintf("%d.%02d", input.Amount/100, input.Amount%100))
	form.Set("currency", input.Currency)
	form.Set("tran_id", input.PaymentID.String())
	form.Set("success_url", fmt.Sprintf("%s/payments/callback/ssl_commerz", appHost))
	form.Set("fail_url", fmt.Sprintf("%s/payments/callback/ssl_commerz", appHost))
	form.Set("cancel_url", fmt.Sprintf("%s/payments/callback/ssl_commerz", appHost))
	form.Set("cus_name", input.Payer)
	form.Set("product_name", fmt.Sprintf("Booking #%d", input.BookingID))
	form.Set("product_category", "service")
	form.Set("product_profile", "non-physical-goods")
	form.Set("shipping_method", "NO")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+"/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	if gjson.GetBytes(body, "status").String() != "SUCCESS" {
		return nil, fmt.Errorf("%w: sslcommerz session failed: %s", types.ErrGateway, gjson.GetBytes(body, "failedreason").String())
	}
	return &GatewaySession{
		TransactionID: input.PaymentID.String(),
		RedirectURL:   gjson.GetBytes(body, "GatewayPageURL").String(),
	}, nil
}

func (s *SSLCommerzGateway) Verify(ctx context.Context, transactionID string) (*GatewayResult, error) {
	q := url.Values{}
	q.Set("tran_id", transactionID)
	q.Set("store_id", os.Getenv("SSLCOMMERZ_STORE_ID"))
	q.Set("store_passwd", os.Getenv("SSLCOMMERZ_STORE_PASSWORD"))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/validator/api/merchantTransIDvalidationAPI.php?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := s.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	status := gjson.GetBytes(body, "element.0.status").String()
	return &GatewayResult{
		TransactionID: transactionID,
		Paid:          status == "VALID" || status == "VALIDATED",
		Raw: types.JSONB{
			"status":       status,
			"bank_tran_id": gjson.GetBytes(body, "element.0.bank_tran_id").String(),
		},
	}, nil
}
