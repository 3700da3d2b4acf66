package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes a JSON value that may arrive as either a string or a
// number. VegaCheckout sends total_price both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("total value is neither string nor number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// WebhookCustomer is the customer block common to both platforms.
type WebhookCustomer struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
	Document string `json:"document"`
}

// WebhookItem is one purchased item in a For4Payments payload.
type WebhookItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// WebhookProduct is a product entry in a VegaCheckout payload.
type WebhookProduct struct {
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Quantity int        `json:"quantity"`
	Amount   FlexString `json:"amount"`
}

// WebhookPlan groups products in a VegaCheckout payload.
type WebhookPlan struct {
	Name     string           `json:"name"`
	Amount   FlexString       `json:"amount"`
	Products []WebhookProduct `json:"products"`
}

// WebhookPayload is the union of the fields the engine reads from both
// platforms' webhook bodies. Field names that collide across platforms
// keep their platform-specific JSON keys.
type WebhookPayload struct {
	// Shared
	Status   string          `json:"status"`
	Customer WebhookCustomer `json:"customer"`

	// For4Payments
	PaymentID     string        `json:"paymentId"`
	PaymentMethod string        `json:"paymentMethod"`
	TotalValue    FlexString    `json:"totalValue"`
	PixQRCode     string        `json:"pixQrCode"`
	PixCodeF4     string        `json:"pixCode"`
	ExpiresAt     string        `json:"expiresAt"`
	ApprovedAtF4  string        `json:"approvedAt"`
	RefundedAtF4  string        `json:"refundedAt"`
	ChargebackAt  string        `json:"chargebackAt"`
	Items         []WebhookItem `json:"items"`

	// VegaCheckout
	TransactionID        string           `json:"transaction_id"`
	TransactionToken     string           `json:"transaction_token"`
	CheckoutID           string           `json:"checkout_id"`
	Method               string           `json:"method"`
	PaymentType          string           `json:"payment_type"`
	TotalPrice           FlexString       `json:"total_price"`
	QRCodeURL            string           `json:"qrcode_url"`
	PixCodeImage64       string           `json:"pix_code_image64"`
	PixCode              string           `json:"pix_code"`
	BilletURL            string           `json:"billet_url"`
	BilletDigitableLine  string           `json:"billet_digitable_line"`
	BilletDueDate        string           `json:"billet_due_date"`
	CheckoutURL          string           `json:"checkout_url"`
	OrderURL             string           `json:"order_url"`
	AbandonedCheckoutURL string           `json:"abandoned_checkout_url"`
	EventName            string           `json:"event_name"`
	CreatedAt            string           `json:"created_at"`
	UpdatedAt            string           `json:"updated_at"`
	ApprovedAt           string           `json:"approved_at"`
	RefundedAt           string           `json:"refunded_at"`
	Plans                []WebhookPlan    `json:"plans"`
	Products             []WebhookProduct `json:"products"`
}

// ParseWebhookPayload decodes a raw webhook body.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, ErrInvalidInput("invalid webhook payload: malformed JSON")
	}
	return &p, nil
}
