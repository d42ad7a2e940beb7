package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

/*
====================================
CARDS
====================================
*/

// ListCards describes the listcards operation and its observable behavior.
//
// ListCards may return an error when input validation, dependency calls, or security checks fail.
// ListCards does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListCards(ctx context.Context) ([]Card, error) {
	var cards []Card
	if err := c.do(ctx, c.res, http.MethodGet, "/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard describes the getcard operation and its observable behavior.
//
// GetCard may return an error when input validation, dependency calls, or security checks fail.
// GetCard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.do(ctx, c.res, http.MethodGet, "/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateCard describes the createcard operation and its observable behavior.
//
// CreateCard may return an error when input validation, dependency calls, or security checks fail.
// CreateCard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CreateCard(ctx context.Context, card Card) (*Card, error) {
	var created Card
	if err := c.do(ctx, c.res, http.MethodPost, "/cards", card, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteCard describes the deletecard operation and its observable behavior.
//
// DeleteCard may return an error when input validation, dependency calls, or security checks fail.
// DeleteCard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, c.res, http.MethodDelete, "/cards/"+url.PathEscape(id), nil, nil)
}

// TopUpCard describes the topupcard operation and its observable behavior.
//
// TopUpCard may return an error when input validation, dependency calls, or security checks fail.
// TopUpCard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) TopUpCard(ctx context.Context, id string, amount int64) (*Card, error) {
	var card Card
	body := map[string]int64{"amount": amount}
	if err := c.do(ctx, c.res, http.MethodPost, "/cards/"+url.PathEscape(id)+"/top-up", body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

/*
====================================
DEVICES
====================================
*/

// ListDevices describes the listdevices operation and its observable behavior.
//
// ListDevices may return an error when input validation, dependency calls, or security checks fail.
// ListDevices does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.do(ctx, c.res, http.MethodGet, "/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice describes the getdevice operation and its observable behavior.
//
// GetDevice may return an error when input validation, dependency calls, or security checks fail.
// GetDevice does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) GetDevice(ctx context.Context, id string) (*Device, error) {
	var device Device
	if err := c.do(ctx, c.res, http.MethodGet, "/devices/"+url.PathEscape(id), nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// SendDeviceCommand describes the senddevicecommand operation and its observable behavior.
//
// SendDeviceCommand may return an error when input validation, dependency calls, or security checks fail.
// SendDeviceCommand does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) SendDeviceCommand(ctx context.Context, id, command string) error {
	body := map[string]string{"command": command}
	return c.do(ctx, c.res, http.MethodPost, "/devices/"+url.PathEscape(id)+"/commands", body, nil)
}

/*
====================================
PARKING SESSIONS
====================================
*/

// ListParkingSessions describes the listparkingsessions operation and its observable behavior.
//
// ListParkingSessions may return an error when input validation, dependency calls, or security checks fail.
// ListParkingSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListParkingSessions(ctx context.Context, filter SessionFilter) ([]ParkingSession, error) {
	path := "/parking-sessions" + sessionQuery(filter)
	var sessions []ParkingSession
	if err := c.do(ctx, c.res, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ActiveParkingSessions describes the activeparkingsessions operation and its observable behavior.
//
// ActiveParkingSessions may return an error when input validation, dependency calls, or security checks fail.
// ActiveParkingSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ActiveParkingSessions(ctx context.Context) ([]ParkingSession, error) {
	return c.ListParkingSessions(ctx, SessionFilter{ActiveOnly: true})
}

// CloseParkingSession describes the closeparkingsession operation and its observable behavior.
//
// CloseParkingSession may return an error when input validation, dependency calls, or security checks fail.
// CloseParkingSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CloseParkingSession(ctx context.Context, id string) (*ParkingSession, error) {
	var session ParkingSession
	if err := c.do(ctx, c.res, http.MethodPost, "/parking-sessions/"+url.PathEscape(id)+"/close", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

/*
====================================
INVOICES
====================================
*/

// ListInvoices describes the listinvoices operation and its observable behavior.
//
// ListInvoices may return an error when input validation, dependency calls, or security checks fail.
// ListInvoices does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListInvoices(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	if err := c.do(ctx, c.res, http.MethodGet, "/invoices", nil, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// GetInvoice describes the getinvoice operation and its observable behavior.
//
// GetInvoice may return an error when input validation, dependency calls, or security checks fail.
// GetInvoice does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, c.res, http.MethodGet, "/invoices/"+url.PathEscape(id), nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// PayInvoice describes the payinvoice operation and its observable behavior.
//
// PayInvoice may return an error when input validation, dependency calls, or security checks fail.
// PayInvoice does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) PayInvoice(ctx context.Context, id string) (*Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, c.res, http.MethodPost, "/invoices/"+url.PathEscape(id)+"/pay", nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

/*
====================================
FIRMWARE
====================================
*/

// LatestFirmware describes the latestfirmware operation and its observable behavior.
//
// LatestFirmware may return an error when input validation, dependency calls, or security checks fail.
// LatestFirmware does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) LatestFirmware(ctx context.Context) (*Firmware, error) {
	var fw Firmware
	if err := c.do(ctx, c.res, http.MethodGet, "/firmware/latest", nil, &fw); err != nil {
		return nil, err
	}
	return &fw, nil
}

// RolloutFirmware describes the rolloutfirmware operation and its observable behavior.
//
// RolloutFirmware may return an error when input validation, dependency calls, or security checks fail.
// RolloutFirmware does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RolloutFirmware(ctx context.Context, version string) error {
	body := map[string]string{"version": version}
	return c.do(ctx, c.res, http.MethodPost, "/firmware/rollout", body, nil)
}

func sessionQuery(filter SessionFilter) string {
	q := url.Values{}
	if filter.CardID != "" {
		q.Set("card_id", filter.CardID)
	}
	if filter.Gate != "" {
		q.Set("gate", filter.Gate)
	}
	if filter.ActiveOnly {
		q.Set("active", "true")
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
