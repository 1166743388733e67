package talent

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL    = "https://api.talentbase.dev"
	userAgent = "avoronov/talentdir (avoronov@fastmail.com)"
	// Max value for list page size.
	pageLimit = 100

	// Detail fetches are issued in parallel by the hydrator, keep them polite.
	detailRPS   = 8
	detailBurst = 4
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(detailRPS), detailBurst),
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) List(params *ListParams) (*Candidates, error) {
	return c.list(params)
}

func (c *Client) GetDetail(id string) (*CandidateDetail, error) {
	return c.getDetail(id)
}

func (c *Client) Delete(id string) error {
	return c.deleteCandidate(id)
}
