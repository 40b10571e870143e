// Package notify sends SMS and push messages through HTTP gateways.
package notify

import (
	"context"
	"fmt"
	"strings"

	"burger-ordering-api/breaker"
	"burger-ordering-api/models"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	SMSGatewayURL  string
	SMSAPIKey      string
	PushGatewayURL string
}

// Client posts messages to the configured gateways. A gateway without a URL is
// skipped with a log line.
type Client struct {
	http        *resty.Client
	smsCircuit  *breaker.CircuitBreaker
	pushCircuit *breaker.CircuitBreaker
	cfg         Config
}

func NewClient(cfg Config) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(breaker.DefaultTimeout).
			SetRetryCount(0),
		smsCircuit:  breaker.New("SMS"),
		pushCircuit: breaker.New("Push"),
		cfg:         cfg,
	}
}

type smsRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type pushRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (c *Client) SMS(ctx context.Context, phone, text string) error {
	if c == nil || c.cfg.SMSGatewayURL == "" {
		log.WithField("phone", phone).Debug("SMS gateway not configured, skipping")
		return nil
	}
	return c.post(ctx, c.smsCircuit, c.cfg.SMSGatewayURL, smsRequest{To: phone, Text: text})
}

func (c *Client) Push(ctx context.Context, title, body string) error {
	if c == nil || c.cfg.PushGatewayURL == "" {
		log.WithField("title", title).Debug("Push gateway not configured, skipping")
		return nil
	}
	return c.post(ctx, c.pushCircuit, c.cfg.PushGatewayURL, pushRequest{Title: title, Body: body})
}

func (c *Client) post(ctx context.Context, cb *breaker.CircuitBreaker, url string, body interface{}) error {
	_, err := cb.Execute(func() (interface{}, error) {
		req := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body)
		if c.cfg.SMSAPIKey != "" && cb == c.smsCircuit {
			req.SetAuthToken(c.cfg.SMSAPIKey)
		}
		resp, httpErr := req.Post(url)
		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode(), resp.String())
		}
		return nil, nil
	})
	return err
}

// StatusMessage is the SMS text sent when an order moves to status
func StatusMessage(number string, status models.OrderStatus, eta string) string {
	short := strings.ToUpper(number)
	if len(short) > 8 {
		short = short[:8]
	}
	switch status {
	case models.StatusAccepted:
		if eta != "" {
			return fmt.Sprintf("Zamowienie %s przyjete. Szacowany czas: %s.", short, eta)
		}
		return fmt.Sprintf("Zamowienie %s przyjete.", short)
	case models.StatusCompleted:
		return fmt.Sprintf("Zamowienie %s gotowe. Smacznego!", short)
	case models.StatusCancelled:
		return fmt.Sprintf("Zamowienie %s zostalo anulowane.", short)
	}
	return fmt.Sprintf("Zamowienie %s: %s.", short, status)
}
