package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cwygoda/redditwall/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIURL    = "https://oauth.reddit.com"
	DefaultUserAgent = "Wallpaper downloader"

	// pageSize is the largest page Reddit serves per listing request.
	pageSize = 100

	// DefaultRequestsPerMinute is Reddit's limit for OAuth clients.
	DefaultRequestsPerMinute = 100
	burst                    = 10
)

// Credentials are the script-app secrets for the password grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Options configure which listing is read.
type Options struct {
	Subreddit  string
	TimeFilter string
	Limit      int
	UserAgent  string
	TokenURL   string
	APIURL     string
	HTTPClient *http.Client

	// RequestsPerMinute caps API calls. Image downloads are not limited.
	RequestsPerMinute int
}

func (o *Options) setDefaults() {
	if o.Subreddit == "" {
		o.Subreddit = "EarthPorn"
	}
	if o.TimeFilter == "" {
		o.TimeFilter = "all"
	}
	if o.Limit <= 0 {
		o.Limit = pageSize
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = DefaultRequestsPerMinute
	}
}

// Client implements domain.PostSource against the Reddit API.
type Client struct {
	api      *http.Client
	download *http.Client
	opts     Options
}

// New authenticates with the password grant and returns a ready client.
func New(ctx context.Context, creds Credentials, opts Options) (*Client, error) {
	opts.setDefaults()

	base := &http.Client{
		Timeout:   opts.HTTPClient.Timeout,
		Transport: &userAgentTransport{agent: opts.UserAgent, next: transportOf(opts.HTTPClient)},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  opts.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	token, err := conf.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}
	log.Debug().Str("user", creds.Username).Time("expiry", token.Expiry).Msg("authenticated")

	api := conf.Client(ctx, token)
	api.Timeout = base.Timeout
	api.Transport = &limitTransport{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), burst),
		next:    api.Transport,
	}

	return &Client{
		api:      api,
		download: base,
		opts:     opts,
	}, nil
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// TopPosts returns up to Limit posts of the top listing, in listing order.
func (c *Client) TopPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	after := ""
	for len(posts) < c.opts.Limit {
		page, err := c.topPage(ctx, after, min(pageSize, c.opts.Limit-len(posts)))
		if err != nil {
			return nil, err
		}
		for _, child := range page.Data.Children {
			posts = append(posts, domain.Post{Title: child.Data.Title, URL: child.Data.URL})
		}
		log.Debug().Int("page", len(page.Data.Children)).Int("total", len(posts)).Msg("listing page")

		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			break
		}
	}
	if len(posts) > c.opts.Limit {
		posts = posts[:c.opts.Limit]
	}
	return posts, nil
}

func (c *Client) topPage(ctx context.Context, after string, limit int) (*listing, error) {
	q := url.Values{}
	q.Set("t", c.opts.TimeFilter)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
	}
	u := fmt.Sprintf("%s/r/%s/top?%s", c.opts.APIURL, url.PathEscape(c.opts.Subreddit), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing r/%s: status %d", c.opts.Subreddit, resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &l, nil
}

// Open starts downloading an image. The caller closes the body.
func (c *Client) Open(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.download.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// userAgentTransport sets the User-Agent Reddit requires on every request.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(r)
}

func transportOf(c *http.Client) http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	return http.DefaultTransport
}

// limitTransport waits for the limiter before every request.
type limitTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
