// Package acsemail sends mail through the Azure Communication Services
// Email REST API.
package acsemail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rotisserie/eris"
)

const (
	moduleName    = "acsemail"
	moduleVersion = "v1.0.0"

	// APIVersion is the Email REST API version this client speaks.
	APIVersion = "2023-03-31"

	tokenScope = "https://communication.azure.com//.default"
)

// Client sends email.
type Client interface {
	// Send submits one plain-text message and returns the operation ID
	// assigned by the service.
	Send(ctx context.Context, sender, recipient, subject, body string) (string, error)
}

// Config configures a Client. When the connection string carries an access
// key, requests are HMAC signed; otherwise the default Azure credential
// chain supplies a bearer token.
type Config struct {
	ConnectionString string
}

type client struct {
	endpoint string
	pipeline runtime.Pipeline
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) (Client, error) {
	cs, err := ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, err
	}

	opts := &policy.ClientOptions{
		// Retries are owned by the caller's retry policy.
		Retry: policy.RetryOptions{MaxRetries: -1},
	}

	var auth policy.Policy
	if cs.AccessKey != "" {
		auth, err = newHMACPolicy(cs.AccessKey)
		if err != nil {
			return nil, err
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, eris.Wrap(err, "acsemail: default credential")
		}
		auth = runtime.NewBearerTokenPolicy(cred, []string{tokenScope}, nil)
	}

	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{auth},
	}, opts)

	return &client{endpoint: cs.Endpoint, pipeline: pl}, nil
}

type address struct {
	Address string `json:"address"`
}

type sendRequest struct {
	SenderAddress string `json:"senderAddress"`
	Recipients    struct {
		To []address `json:"to"`
	} `json:"recipients"`
	Content struct {
		Subject   string `json:"subject"`
		PlainText string `json:"plainText"`
	} `json:"content"`
}

type sendResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Send implements Client. Only a 202 Accepted counts as success.
func (c *client) Send(ctx context.Context, sender, recipient, subject, body string) (string, error) {
	req, err := runtime.NewRequest(ctx, http.MethodPost, c.endpoint+"/emails:send")
	if err != nil {
		return "", eris.Wrap(err, "acsemail: create request")
	}
	q := req.Raw().URL.Query()
	q.Set("api-version", APIVersion)
	req.Raw().URL.RawQuery = q.Encode()
	req.Raw().Header.Set("Accept", "application/json")

	var payload sendRequest
	payload.SenderAddress = sender
	payload.Recipients.To = []address{{Address: recipient}}
	payload.Content.Subject = subject
	payload.Content.PlainText = body
	if err := runtime.MarshalAsJSON(req, payload); err != nil {
		return "", eris.Wrap(err, "acsemail: encode request")
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "acsemail: send")
	}
	defer resp.Body.Close() //nolint:errcheck

	if !runtime.HasStatusCode(resp, http.StatusAccepted) {
		return "", runtime.NewResponseError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "acsemail: read response")
	}
	var sr sendResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &sr); err != nil {
			return "", eris.Wrap(err, "acsemail: decode response")
		}
	}
	if sr.ID == "" {
		sr.ID = resp.Header.Get("Operation-Id")
	}
	return sr.ID, nil
}

// StatusCode extracts the HTTP status from an error returned by Send, or 0.
func StatusCode(err error) int {
	var re *azcore.ResponseError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
