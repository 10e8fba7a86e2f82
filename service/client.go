package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/tile"
)

const defaultRequestTimeout = 10 * time.Second

// Requester sends a request and waits for one reply. *nats.Conn satisfies
// it.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

type Client struct {
	nc      Requester
	subject string
	timeout time.Duration
}

func NewClient(nc Requester, subject string) *Client {
	return &Client{nc: nc, subject: subject, timeout: defaultRequestTimeout}
}

// Analyze sends a hand to the service and returns up to top summaries. A
// top of 0 uses the service's default.
func (c *Client) Analyze(ctx context.Context, hand tile.Hand, top int) ([]analyzer.TemplateMatchSummary, error) {
	data, err := json.Marshal(AnalyzeRequest{Hand: hand.Codes(), Top: top})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.nc.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))

	var resp AnalyzeResponse
	if err := json.Unmarshal(res.Data, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("service returned: " + resp.Error)
	}
	return resp.Results, nil
}
