package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"psm/src/types"
	"time"

	"github.com/tidwall/gjson"
)

// BkashGateway drives the bKash tokenized checkout API. A grant token is
// fetched per call; bKash tokens are short-lived and the call volume here
// does not justify caching them.
type BkashGateway struct {
	HTTPClient *http.Client
}

func (b *BkashGateway) Name() types.PaymentMethod {
	return types.METHOD_BKASH
}

func (b *BkashGateway) httpClient() *http.Client {
	if b.HTTPClient != nil {
		return b.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (b *BkashGateway) baseURL() string {
	return os.Getenv("BKASH_BASE_URL")
}

func (b *BkashGateway) grantToken(ctx context.Context) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"app_key":    os.Getenv("BKASH_APP_KEY"),
		"app_secret": os.Getenv("BKASH_APP_SECRET"),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL()+"/tokenized/checkout/token/grant", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("username", os.Getenv("BKASH_USERNAME"))
	req.Header.Set("password", os.Getenv("BKASH_PASSWORD"))

	res, err := b.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	token := gjson.GetBytes(body, "id_token").String()
	if token == "" {
		return "", fmt.Errorf("%w: bkash token grant failed: %s", types.ErrGateway, gjson.GetBytes(body, "statusMessage").String())
	}
	return token, nil
}

func (b *BkashGateway) authedPost(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	token, err := b.grantToken(ctx)
	if err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL()+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("X-App-Key", os.Getenv("BKASH_APP_KEY"))

	res, err := b.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	return body, nil
}

func (b *BkashGateway) Initiate(ctx context.Context, input *InitiatePaymentInput) (*GatewaySession, error) {
	callbackURL := fmt.Sprintf("%s/payments/callback/bkash", os.Getenv("APP_HOST"))
	body, err := b.authedPost(ctx, "/tokenized/checkout/create", map[string]any{
		"mode":                  "0011",
		"payerReference":        input.Payer,
		"callbackURL":           callbackURL,
		"amount":                fmt.Sprintf("%d.%02d", input.Amount/100, input.Amount%100),
		"currency":              input.Currency,
		"intent":                "sale",
		"merchantInvoiceNumber": input.PaymentID.String(),
	})
	if err != nil {
		return nil, err
	}
	paymentID := gjson.GetBytes(body, "paymentID").String()
	redirect := gjson.GetBytes(body, "bkashURL").String()
	if paymentID == "" || redirect == "" {
		return nil, fmt.Errorf("%w: bkash create failed: %s", types.ErrGateway, gjson.GetBytes(body, "statusMessage").String())
	}
	return &GatewaySession{TransactionID: paymentID, RedirectURL: redirect}, nil
}

func (b *BkashGateway) Verify(ctx context.Context, transactionID string) (*GatewayResult, error) {
	body, err := b.authedPost(ctx, "/tokenized/checkout/execute", map[string]any{
		"paymentID": transactionID,
	})
	if err != nil {
		return nil, err
	}
	status := gjson.GetBytes(body, "transactionStatus").String()
	return &GatewayResult{
		TransactionID: transactionID,
		Paid:          status == "Completed",
		Raw: types.JSONB{
			"transactionStatus": status,
			"trxID":             gjson.GetBytes(body, "trxID").String(),
		},
	}, nil
}
