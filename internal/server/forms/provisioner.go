package forms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/common"
	"github.com/dmitrijs2005/feedbox/internal/netx"
)

// Form is the result of provisioning.
type Form struct {
	FormID    string
	QRCodeURL string
}

type provisionRequest struct {
	Name string `json:"name"`
}

type provisionResponse struct {
	FormID string `json:"form_id"`
}

// Provisioner creates forms through the provider's HTTP API. Calls are bounded
// by Timeout and never retried; every failure is reported as
// common.ErrorProvisioning.
type Provisioner struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Links    Links
	Client   *http.Client
}

func NewProvisioner(endpoint, apiKey string, timeout time.Duration, links Links) *Provisioner {
	return &Provisioner{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Timeout:  timeout,
		Links:    links,
		Client:   &http.Client{},
	}
}

func (p *Provisioner) Provision(ctx context.Context, name string) (*Form, error) {
	if p.Endpoint == "" {
		return nil, fmt.Errorf("%w: provider endpoint is not configured", common.ErrorProvisioning)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	headers := map[string]string{}
	if p.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.APIKey
	}

	var resp provisionResponse
	if err := netx.PostJSON(ctx, client, p.Endpoint, headers, provisionRequest{Name: name}, &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: provider timed out: %w", common.ErrorProvisioning, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorProvisioning, err)
	}
	if resp.FormID == "" {
		return nil, fmt.Errorf("%w: provider returned an empty form id", common.ErrorProvisioning)
	}

	return &Form{FormID: resp.FormID, QRCodeURL: p.Links.QRCodeURL(resp.FormID)}, nil
}
