package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmehdipour/dialer/internal/config"
)

// ErrNotConfigured is returned when account credentials are missing. The
// panel still runs; every call attempt fails with this, per-number.
var ErrNotConfigured = errors.New("twilio credentials not configured")

// Say is the voice message played to the callee.
type Say struct {
	Message  string
	Voice    string
	Language string
}

// TwilioClient talks to the Twilio REST API over plain HTTP.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	say        Say
	client     *http.Client
}

func NewTwilioClient(cfg config.TwilioConfig, say Say) *TwilioClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.twilio.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TwilioClient{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		baseURL:    base,
		say:        say,
		client:     &http.Client{Timeout: timeout},
	}
}

// Configured reports whether account credentials are present.
func (c *TwilioClient) Configured() bool {
	return c.accountSID != "" && c.authToken != ""
}

type callResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// PlaceCall queues one outbound call with the configured caller ID and
// voice message. It returns the provider call SID on success.
func (c *TwilioClient) PlaceCall(ctx context.Context, to string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Twiml", BuildTwiML(c.say))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	body, err := c.do(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}

	var resp callResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode call response: %w", err)
	}
	if resp.SID == "" {
		return "", &ProviderError{Message: "call response missing sid"}
	}
	return resp.SID, nil
}

type callerIDsResponse struct {
	OutgoingCallerIDs []struct {
		PhoneNumber string `json:"phone_number"`
	} `json:"outgoing_caller_ids"`
}

// ListVerifiedNumbers fetches the account's verified caller IDs in
// provider-assigned order.
func (c *TwilioClient) ListVerifiedNumbers(ctx context.Context) ([]string, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/OutgoingCallerIds.json?PageSize=100", c.baseURL, c.accountSID)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var resp callerIDsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode caller ids: %w", err)
	}
	out := make([]string, 0, len(resp.OutgoingCallerIDs))
	for _, id := range resp.OutgoingCallerIDs {
		if id.PhoneNumber != "" {
			out = append(out, id.PhoneNumber)
		}
	}
	return out, nil
}

func (c *TwilioClient) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode/100 != 2 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return nil, &ProviderError{Code: apiErr.Code, Message: apiErr.Message, HTTPStatus: res.StatusCode}
		}
		return nil, &ProviderError{Message: fmt.Sprintf("unexpected status %d", res.StatusCode), HTTPStatus: res.StatusCode}
	}
	return raw, nil
}

// BuildTwiML renders the <Say> voice document sent with each call. Message
// text is XML-escaped.
func BuildTwiML(say Say) string {
	var msg bytes.Buffer
	_ = xml.EscapeText(&msg, []byte(say.Message))

	var b strings.Builder
	b.WriteString("<Response><Say")
	if say.Voice != "" {
		b.WriteString(fmt.Sprintf(" voice=%q", say.Voice))
	}
	if say.Language != "" {
		b.WriteString(fmt.Sprintf(" language=%q", say.Language))
	}
	b.WriteString(">")
	b.Write(msg.Bytes())
	b.WriteString("</Say></Response>")
	return b.String()
}
