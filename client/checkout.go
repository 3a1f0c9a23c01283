package client

import (
	"context"
	"fmt"
	"strings"
)

func (d Delivery) validate() error {
	missing := []string{}
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(d.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(d.Zip) == "" {
		missing = append(missing, "zip")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing delivery fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Checkout submits the cart as a completed order. On success the store is
// cleared and the emptied cart is synced immediately, superseding any save
// snapshotted before the order: cancelling instead would let an in-flight
// save land after the server deleted the pending record and resurrect the
// checked-out items on the next load. On failure the store is left untouched
// so the user can retry. syncer may be nil.
func (c *Client) Checkout(ctx context.Context, store *CartStore, syncer *Syncer, delivery Delivery) (Order, error) {
	sess := c.Session()
	if !sess.Valid() {
		return Order{}, fmt.Errorf("%w: login required to check out", ErrUnauthorized)
	}
	if err := delivery.validate(); err != nil {
		return Order{}, err
	}

	items := store.Items()
	if len(items) == 0 {
		return Order{}, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	order, err := c.placeOrder(ctx, sess.UserID, items, store.Total(), delivery)
	if err != nil {
		return Order{}, err
	}

	store.Clear()
	if syncer != nil {
		syncer.Flush()
	}
	return order, nil
}
