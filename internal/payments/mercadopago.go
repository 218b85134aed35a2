package payments

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/parknow-app/parknow-api/internal/models"
)

// Checkout creates Mercado Pago checkout preferences for bookings. When no
// access token is configured the client stays nil and Enabled reports false.
type Checkout struct {
	client preference.Client
}

func NewCheckout(accessToken string) (*Checkout, error) {
	if accessToken == "" {
		return &Checkout{}, nil
	}

	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &Checkout{client: preference.NewClient(cfg)}, nil
}

func (ch *Checkout) Enabled() bool {
	return ch.client != nil
}

// CreatePreference registers the booking as a payable item and returns the
// preference id plus the hosted checkout URL.
func (ch *Checkout) CreatePreference(
	ctx context.Context,
	booking *models.Booking,
	space *models.ParkingSpace,
) (string, string, error) {

	req := preference.Request{
		ExternalReference: fmt.Sprintf("booking-%d", booking.ID),
		Items: []preference.ItemRequest{
			{
				ID:          fmt.Sprintf("space-%d", space.ID),
				Title:       space.Title,
				Description: fmt.Sprintf("Parking at %s, %s", space.Address, space.City),
				Quantity:    1,
				UnitPrice:   booking.TotalPrice,
			},
		},
	}

	resource, err := ch.client.Create(ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("create preference: %w", err)
	}

	return resource.ID, resource.InitPoint, nil
}
