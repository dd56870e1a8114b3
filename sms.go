package client

import (
	"context"
	"strings"
)

// SendSMSParams describes an outgoing message.
type SendSMSParams struct {
	Origin      string // sender ID; the account default applies when empty
	Destination string
	Message     string

	// ScheduledDateTime defers delivery, "yyyy-MM-dd HH:mm:ss".
	ScheduledDateTime string

	// Extra carries additional form fields verbatim.
	Extra map[string]string
}

func (p SendSMSParams) validate() error {
	if strings.TrimSpace(p.Destination) == "" {
		return &ValidationError{Field: "destination", Message: "must not be empty"}
	}
	if p.Message == "" {
		return &ValidationError{Field: "message", Message: "must not be empty"}
	}
	return nil
}

func (p SendSMSParams) form() map[string]string {
	form := make(map[string]string, len(p.Extra)+4)
	for k, v := range p.Extra {
		form[k] = v
	}
	form["destination"] = p.Destination
	form["message"] = p.Message
	if p.Origin != "" {
		form["origin"] = p.Origin
	}
	if p.ScheduledDateTime != "" {
		form["scheduledDateTime"] = p.ScheduledDateTime
	}
	return form
}

// SendSMS posts a message to the sms endpoint.
func (c *Client) SendSMS(ctx context.Context, params SendSMSParams) (*Result, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return c.Post(ctx, EndpointSMS, params.form())
}

// ListMessages lists outgoing messages. query accepts the API's filter
// parameters such as limit, offset, status.
func (c *Client) ListMessages(ctx context.Context, query map[string]string) (*Result, error) {
	return c.Get(ctx, EndpointSMS, query)
}

// GetMessage fetches one outgoing message by ID.
func (c *Client) GetMessage(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "must not be empty"}
	}
	return c.Get(ctx, EndpointMsg+id, nil)
}

// DeleteMessage deletes one outgoing message by ID.
func (c *Client) DeleteMessage(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "must not be empty"}
	}
	return c.Delete(ctx, EndpointMsg+id)
}

// ListIncoming lists received messages.
func (c *Client) ListIncoming(ctx context.Context, query map[string]string) (*Result, error) {
	return c.Get(ctx, EndpointSMSIncoming, query)
}

// CreditBalance returns the account balance.
func (c *Client) CreditBalance(ctx context.Context) (*Result, error) {
	return c.Get(ctx, EndpointCreditBalance, nil)
}
