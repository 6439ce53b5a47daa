package authapi

import (
	"context"
	"fmt"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const (
	requestChallengePath = "/challenge/request/evm"
	verifyChallengePath  = "/challenge/verify/evm"
)

// ChallengeRequest asks the provider to issue a sign-in message for an EVM wallet.
// ChainId and Address are nil when the caller did not supply them.
type ChallengeRequest struct {
	Domain         string   `json:"domain"`
	ChainId        *string  `json:"chainId"`
	Address        *string  `json:"address"`
	Statement      string   `json:"statement"`
	Uri            string   `json:"uri"`
	ExpirationTime string   `json:"expirationTime"`
	NotBefore      string   `json:"notBefore"`
	Resources      []string `json:"resources"`
	Timeout        int      `json:"timeout"`
}

type ChallengeVerification struct {
	Message   *string `json:"message"`
	Signature *string `json:"signature"`
}

// Reply is the provider's answer, kept verbatim.
type Reply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type Client struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

// NewClient never retries: each relayed call reaches the provider exactly once.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

func (c *Client) RequestChallenge(ctx context.Context, body *ChallengeRequest) (*Reply, error) {
	return c.post(ctx, requestChallengePath, body)
}

func (c *Client) VerifyChallenge(ctx context.Context, body *ChallengeVerification) (*Reply, error) {
	return c.post(ctx, verifyChallengePath, body)
}

// post returns an error only when no response was received. Any status the
// provider answers with is a Reply.
func (c *Client) post(ctx context.Context, path string, body interface{}) (*Reply, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-API-Key", c.apiKey).
		SetBody(body).
		Post(c.baseURL + path)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Error("Auth provider unreachable")
		return nil, fmt.Errorf("auth provider %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path":   path,
		"status": resp.StatusCode(),
	}).Debug("Auth provider replied")

	return &Reply{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}
