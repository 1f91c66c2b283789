// Package gateway provides a GraphQL client for the remote requirements service.
// It implements a deep module interface - simple methods hiding the GraphQL documents
// and the classification of transport failures.
package gateway

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/machinebox/graphql"
	"github.com/robby/reqboard/internal/domain"
	"github.com/sirupsen/logrus"
)

// ShadowPageSize is the oversized page request used to fetch a whole collection.
const ShadowPageSize = 999999

// Client is a GraphQL API client for the requirements service.
type Client struct {
	gql   *graphql.Client
	token string
	log   logrus.FieldLogger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	log        logrus.FieldLogger
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing and dropped records.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *clientConfig) { c.log = log }
}

// New creates a new client for the GraphQL endpoint authenticated with token.
// An empty token sends no Authorization header.
func New(endpoint, token string, opts ...Option) *Client {
	cfg := clientConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		cfg.log = discard
	}

	var gqlOpts []graphql.ClientOption
	if cfg.httpClient != nil {
		gqlOpts = append(gqlOpts, graphql.WithHTTPClient(cfg.httpClient))
	}
	client := graphql.NewClient(endpoint, gqlOpts...)
	client.Log = func(s string) { cfg.log.Debug(s) }

	return &Client{
		gql:   client,
		token: token,
		log:   cfg.log,
	}
}

// makeRequest executes a GraphQL request with authentication and classifies
// any failure into a *domain.GatewayError.
func (c *Client) makeRequest(ctx context.Context, op string, req *graphql.Request, resp interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if err := c.gql.Run(ctx, req, resp); err != nil {
		return classify(op, err)
	}
	return nil
}

// classify maps a transport or GraphQL failure onto the gateway taxonomy.
func classify(op string, err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewGatewayError(domain.KindNetwork, op, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "validation") || strings.Contains(msg, "invalid input") {
		return domain.NewGatewayError(domain.KindValidation, op, err)
	}
	return domain.NewGatewayError(domain.KindServer, op, err)
}
