package lib

import (
	"context"
	"fmt"
	"os"
	"psm/src/types"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

// InitiatePaymentInput carries everything a gateway needs to open a
// checkout for one booking payment.
type InitiatePaymentInput struct {
	PaymentID uuid.UUID
	BookingID uint
	Amount    int64
	Currency  string
	Payer     string
}

// GatewaySession is the opened checkout: the gateway's transaction
// reference and the URL the client is redirected to.
type GatewaySession struct {
	TransactionID string
	RedirectURL   string
}

// GatewayResult is the verified outcome of a transaction.
type GatewayResult struct {
	TransactionID string
	Paid          bool
	Raw           types.JSONB
}

type PaymentGateway interface {
	Name() types.PaymentMethod
	Initiate(ctx context.Context, input *InitiatePaymentInput) (*GatewaySession, error)
	Verify(ctx context.Context, transactionID string) (*GatewayResult, error)
}

var gatewayOverride map[types.PaymentMethod]PaymentGateway

// NewPaymentGateway Replace gateway lookups for a method with a custom implementation
func NewPaymentGateway(method types.PaymentMethod, g PaymentGateway) {
	if gatewayOverride == nil {
		gatewayOverride = map[types.PaymentMethod]PaymentGateway{}
	}
	gatewayOverride[method] = g
}

func GetPaymentGateway(method types.PaymentMethod) (PaymentGateway, error) {
	if g, ok := gatewayOverride[method]; ok {
		return g, nil
	}
	switch method {
	case types.METHOD_BKASH:
		return &BkashGateway{}, nil
	case types.METHOD_SSL_COMMERZ:
		return &SSLCommerzGateway{}, nil
	case types.METHOD_STRIPE:
		return &StripeGateway{}, nil
	case types.METHOD_CASH:
		return &CashGateway{}, nil
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", method)
	}
}

type StripeGateway struct{}

func (s *StripeGateway) Name() types.PaymentMethod {
	return types.METHOD_STRIPE
}

func (s *StripeGateway) Initiate(ctx context.Context, input *InitiatePaymentInput) (*GatewaySession, error) {
	sc := GetStripeClient()
	successUrl := fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL: stripe.String(successUrl),
		UIMode:     stripe.String("hosted"),
		Mode:       stripe.String("payment"),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(input.Currency),
					UnitAmount: stripe.Int64(input.Amount),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Booking #%d", input.BookingID)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"paymentId": input.PaymentID.String(),
		},
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(ctx, &createParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	return &GatewaySession{
		TransactionID: checkoutSession.ID,
		RedirectURL:   checkoutSession.URL,
	}, nil
}

func (s *StripeGateway) Verify(ctx context.Context, transactionID string) (*GatewayResult, error) {
	sc := GetStripeClient()
	cs, err := sc.V1CheckoutSessions.Retrieve(ctx, transactionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrGateway, err.Error())
	}
	return &GatewayResult{
		TransactionID: cs.ID,
		Paid:          cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Raw: types.JSONB{
			"status":         cs.Status,
			"payment_status": cs.PaymentStatus,
		},
	}, nil
}

// CashGateway records the intent only. The booking stays pending until the
// professional confirms the cash was received at the session.
type CashGateway struct{}

func (c *CashGateway) Name() types.PaymentMethod {
	return types.METHOD_CASH
}

func (c *CashGateway) Initiate(ctx context.Context, input *InitiatePaymentInput) (*GatewaySession, error) {
	return &GatewaySession{
		TransactionID: fmt.Sprintf("cash-%s", input.PaymentID.String()),
	}, nil
}

func (c *CashGateway) Verify(ctx context.Context, transactionID string) (*GatewayResult, error) {
	return nil, fmt.Errorf("%w: cash payments are confirmed in person", types.ErrGateway)
}
