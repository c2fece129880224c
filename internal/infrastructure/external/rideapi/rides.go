package rideapi

import (
	"context"
	"fmt"
	"net/http"

	"ride-hail-client/internal/domain/ride"
)

var actionFallbacks = map[ride.Action]string{
	ride.ActionAccept:   "Eroare la acceptarea cursei",
	ride.ActionStart:    "Eroare la începerea cursei",
	ride.ActionComplete: "Eroare la finalizarea cursei",
	ride.ActionCancel:   "Eroare la anularea cursei",
}

// CreateRide 送出叫車請求。
func (c *Client) CreateRide(ctx context.Context, in ride.Request) (ride.Ride, error) {
	var r ride.Ride
	err := c.call(ctx, &Request{
		Op:       "create ride",
		Method:   http.MethodPost,
		Path:     "/rides/",
		Body:     in,
		Fallback: "Eroare la solicitarea cursei",
	}, &r)
	return r, err
}

// ListRides 列出自己的行程（後端依角色過濾）。
func (c *Client) ListRides(ctx context.Context) ([]ride.Ride, error) {
	var out []ride.Ride
	err := c.call(ctx, &Request{
		Op:       "list rides",
		Path:     "/rides/",
		Fallback: "Eroare la obținerea curselor",
	}, &out)
	return out, err
}

// Transition 呼叫 /rides/{id}/{action}_ride/。
func (c *Client) Transition(ctx context.Context, id int64, action ride.Action) (ride.Ride, error) {
	var r ride.Ride
	err := c.call(ctx, &Request{
		Op:       string(action) + " ride",
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/rides/%d/%s/", id, action.Endpoint()),
		Fallback: actionFallbacks[action],
	}, &r)
	return r, err
}

func (c *Client) AcceptRide(ctx context.Context, id int64) (ride.Ride, error) {
	return c.Transition(ctx, id, ride.ActionAccept)
}

func (c *Client) StartRide(ctx context.Context, id int64) (ride.Ride, error) {
	return c.Transition(ctx, id, ride.ActionStart)
}

func (c *Client) CompleteRide(ctx context.Context, id int64) (ride.Ride, error) {
	return c.Transition(ctx, id, ride.ActionComplete)
}

func (c *Client) CancelRide(ctx context.Context, id int64) (ride.Ride, error) {
	return c.Transition(ctx, id, ride.ActionCancel)
}
