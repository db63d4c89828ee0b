package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// Session is the transport identity of one crawl: a fixed user agent, the
// consent cookie, a cookie jar, and the client configuration scraped from the
// watch page. A Session must not be shared between concurrent crawls.
type Session struct {
	cfg       engine.Config
	client    *resty.Client
	jar       *cookiejar.Jar
	userAgent string
	ytcfg     *engine.Node
	now       func() time.Time
}

// NewSession creates a session with the consent cookie preset for the
// configured base URL.
func NewSession(c engine.Config) (*Session, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	consent := &http.Cookie{Name: "CONSENT", Value: "YES+cb", Path: "/"}
	if host := base.Hostname(); net.ParseIP(host) == nil {
		if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			consent.Domain = "." + domain
		}
	}
	jar.SetCookies(base, []*http.Cookie{consent})

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", engine.UserAgentChrome)
	if c.Transport != nil {
		client.SetTransport(c.Transport)
	}
	return &Session{
		cfg:       c,
		client:    client,
		jar:       jar,
		userAgent: engine.UserAgentChrome,
		now:       time.Now,
	}, nil
}

// Close releases idle connections held by the session transport.
func (s *Session) Close() {
	s.client.GetClient().CloseIdleConnections()
}

// clientContext is the INNERTUBE_CONTEXT object sent with every continuation.
func (s *Session) clientContext() *engine.Node {
	return s.ytcfg.Get("INNERTUBE_CONTEXT")
}

func (s *Session) apiKey() string {
	return s.ytcfg.Get("INNERTUBE_API_KEY").Text()
}

// Bootstrap loads pageURL, completes the consent redirect when one is
// interposed, and extracts the client configuration and initial page state.
// A non-empty language overrides the client locale before any request uses it.
func (s *Session) Bootstrap(ctx context.Context, pageURL, language string) (*engine.Node, error) {
	engine.IncrPageFetches()
	html, finalURL, err := s.fetchPage(ctx, http.MethodGet, pageURL)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	if strings.Contains(finalURL, "consent") {
		engine.IncrConsentFlows()
		slog.Debug("youtube: consent page interposed", slog.String("url", finalURL))
		params, err := consentFormValues(html)
		if err != nil {
			return nil, fmt.Errorf("consent form: %w", err)
		}
		params.Set("continue", pageURL)
		params.Set("set_eom", "False")
		params.Set("set_ytc", "True")
		params.Set("set_apyt", "True")
		html, _, err = s.fetchPage(ctx, http.MethodPost, s.cfg.ConsentURL+"?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("consent: %w", err)
		}
	}

	ytcfg, err := extractBlob(html, ytCfgRE)
	if err != nil || ytcfg.Empty() || ytcfg.Get("INNERTUBE_CONTEXT") == nil {
		return nil, ErrConfigExtraction
	}
	if language != "" {
		if client := ytcfg.Path("INNERTUBE_CONTEXT", "client"); client != nil {
			client.Set("hl", engine.NewString(language))
		}
	}

	data, err := extractBlob(html, ytInitialDataRE)
	if err != nil {
		return nil, fmt.Errorf("%w: initial data: %v", ErrConfigExtraction, err)
	}
	s.ytcfg = ytcfg
	return data, nil
}

// fetchPage requests an HTML page and returns its body and final URL.
func (s *Session) fetchPage(ctx context.Context, method, target string) (string, string, error) {
	if s.cfg.Retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Retry.Timeout)
		defer cancel()
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetHeaders(engine.PageHeaders(s.userAgent)).
		Execute(method, target)
	if err != nil {
		return "", "", err
	}
	finalURL := target
	if raw := res.RawResponse; raw != nil && raw.Request != nil {
		finalURL = raw.Request.URL.String()
	}
	return string(res.Body()), finalURL, nil
}

// consentFormValues collects the hidden inputs of the consent form.
func consentFormValues(html string) (url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, sel *goquery.Selection) {
		if name := sel.AttrOr("name", ""); name != "" {
			params.Set(name, sel.AttrOr("value", ""))
		}
	})
	return params, nil
}

// extractBlob decodes the JSON object that starts where marker matches.
// marker must end on the object's opening brace.
func extractBlob(html string, marker *regexp.Regexp) (*engine.Node, error) {
	loc := marker.FindStringIndex(html)
	if loc == nil {
		return nil, fmt.Errorf("marker %q not found", marker.String())
	}
	raw, err := engine.ExtractObject(html[loc[1]-1:])
	if err != nil {
		return nil, err
	}
	return engine.ParseNode([]byte(raw))
}
