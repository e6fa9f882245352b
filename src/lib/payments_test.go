package lib

import (
	"context"
	"net/http"
	"net/http/httptest"
	"psm/src/types"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaymentGatewayDispatch(t *testing.T) {
	for _, method := range []types.PaymentMethod{
		types.METHOD_BKASH,
		types.METHOD_SSL_COMMERZ,
		types.METHOD_STRIPE,
		types.METHOD_CASH,
	} {
		g, err := GetPaymentGateway(method)
		require.NoError(t, err)
		assert.Equal(t, method, g.Name())
	}

	_, err := GetPaymentGateway(types.PaymentMethod("paypal"))
	assert.Error(t, err)
}

func TestCashGateway(t *testing.T) {
	g := &CashGateway{}
	input := &InitiatePaymentInput{PaymentID: uuid.New(), BookingID: 1, Amount: 5000, Currency: "BDT"}
	session, err := g.Initiate(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.TransactionID, "cash-"))
	assert.Empty(t, session.RedirectURL)

	_, err = g.Verify(context.Background(), session.TransactionID)
	assert.ErrorIs(t, err, types.ErrGateway)
}

func TestBkashInitiate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokenized/checkout/token/grant":
			w.Write([]byte(`{"id_token":"token-1","statusMessage":"Successful"}`))
		case "/tokenized/checkout/create":
			w.Write([]byte(`{"paymentID":"TR0011abc","bkashURL":"https://sandbox.payment.bkash.com/redirect"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	t.Setenv("BKASH_BASE_URL", server.URL)

	g := &BkashGateway{HTTPClient: server.Client()}
	session, err := g.Initiate(context.Background(), &InitiatePaymentInput{
		PaymentID: uuid.New(),
		BookingID: 7,
		Amount:    150000,
		Currency:  "BDT",
		Payer:     "client-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "TR0011abc", session.TransactionID)
	assert.Equal(t, "https://sandbox.payment.bkash.com/redirect", session.RedirectURL)
}

func TestBkashTokenGrantFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusMessage":"Invalid App Key"}`))
	}))
	defer server.Close()
	t.Setenv("BKASH_BASE_URL", server.URL)

	g := &BkashGateway{HTTPClient: server.Client()}
	_, err := g.Initiate(context.Background(), &InitiatePaymentInput{PaymentID: uuid.New()})
	assert.ErrorIs(t, err, types.ErrGateway)
}

func TestSSLCommerzInitiateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","failedreason":"store credential error"}`))
	}))
	defer server.Close()
	t.Setenv("SSLCOMMERZ_BASE_URL", server.URL)

	g := &SSLCommerzGateway{HTTPClient: server.Client()}
	_, err := g.Initiate(context.Background(), &InitiatePaymentInput{PaymentID: uuid.New(), Amount: 5000, Currency: "BDT"})
	assert.ErrorIs(t, err, types.ErrGateway)
}

func TestSSLCommerzVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"element":[{"status":"VALID","bank_tran_id":"BANK123"}]}`))
	}))
	defer server.Close()
	t.Setenv("SSLCOMMERZ_BASE_URL", server.URL)

	g := &SSLCommerzGateway{HTTPClient: server.Client()}
	result, err := g.Verify(context.Background(), "trx-9")
	require.NoError(t, err)
	assert.True(t, result.Paid)
	assert.Equal(t, "trx-9", result.TransactionID)
	assert.Equal(t, "BANK123", result.Raw["bank_tran_id"])
}
