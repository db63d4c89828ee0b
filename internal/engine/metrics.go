package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PageFetches          atomic.Int64
	ConsentFlows         atomic.Int64
	ContinuationRequests atomic.Int64
	RequestRetries       atomic.Int64
	RequestsExhausted    atomic.Int64
	CommentsEmitted      atomic.Int64
	CrawlErrors          atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"page_fetches":          metrics.PageFetches.Load(),
		"consent_flows":         metrics.ConsentFlows.Load(),
		"continuation_requests": metrics.ContinuationRequests.Load(),
		"request_retries":       metrics.RequestRetries.Load(),
		"requests_exhausted":    metrics.RequestsExhausted.Load(),
		"comments_emitted":      metrics.CommentsEmitted.Load(),
		"crawl_errors":          metrics.CrawlErrors.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"page_fetches", "consent_flows",
		"continuation_requests", "request_retries", "requests_exhausted",
		"comments_emitted", "crawl_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrPageFetches()          { metrics.PageFetches.Add(1) }
func IncrConsentFlows()         { metrics.ConsentFlows.Add(1) }
func IncrContinuationRequests() { metrics.ContinuationRequests.Add(1) }
func IncrRequestsExhausted()    { metrics.RequestsExhausted.Add(1) }
func IncrCommentsEmitted()      { metrics.CommentsEmitted.Add(1) }
func IncrCrawlErrors()          { metrics.CrawlErrors.Add(1) }
