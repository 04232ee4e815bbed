// Package imagegen resolves hero images: an authenticated inference
// endpoint when a token is configured, with a free fallback provider,
// both rate limited and retried with backoff.
package imagegen

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"luxe_brochure/internal/adapters/observability"
)

const (
	ProviderAuto         = "auto"
	ProviderInference    = "inference"
	ProviderPollinations = "pollinations"

	defaultInferenceBase    = "https://router.huggingface.co/hf-inference/models"
	defaultPollinationsBase = "https://image.pollinations.ai"
)

var errPaymentRequired = errors.New("imagegen: credits unavailable")

type Client struct {
	provider      string
	token         string
	model         string
	inferenceBase string
	freeBase      string
	hc            *http.Client
	rl            *rate.Limiter
}

func New(provider, token, model string, rps int) *Client {
	if provider == "" {
		provider = ProviderAuto
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		provider:      provider,
		token:         token,
		model:         model,
		inferenceBase: defaultInferenceBase,
		freeBase:      defaultPollinationsBase,
		hc:            &http.Client{Timeout: 90 * time.Second},
		rl:            rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// WithBaseURLs overrides the provider endpoints, mainly for tests.
func (c *Client) WithBaseURLs(inference, free string) *Client {
	if inference != "" {
		c.inferenceBase = inference
	}
	if free != "" {
		c.freeBase = free
	}
	return c
}

// GenerateHeroImage writes hero.png into outDir and returns its file://
// reference. Provider auto falls back to the free endpoint when the
// token is missing or out of credits.
func (c *Client) GenerateHeroImage(ctx context.Context, prompt, hotelName, location, outDir string) (string, error) {
	visual := buildVisualPrompt(prompt, hotelName, location)

	switch {
	case c.provider == ProviderPollinations:
		return c.generateFree(ctx, visual, outDir)
	case c.token == "" && c.provider == ProviderAuto:
		log.Warn().Msg("image token missing; falling back to free image provider")
		return c.generateFree(ctx, visual, outDir)
	case c.token == "":
		return "", errors.New("imagegen: token missing")
	}

	uri, err := c.generateInference(ctx, visual, outDir)
	if err != nil && c.provider == ProviderAuto {
		log.Warn().Err(err).Msg("inference image failed; switching to free image provider")
		return c.generateFree(ctx, visual, outDir)
	}
	return uri, err
}

// FetchImage downloads a user-supplied image to destPath.
func (c *Client) FetchImage(ctx context.Context, srcURL, destPath string) error {
	body, err := c.get(ctx, "fetch", srcURL, nil)
	if err != nil {
		return err
	}
	return writeImage(destPath, body)
}

func buildVisualPrompt(prompt, hotelName, location string) string {
	base := "Luxury resort photography, exterior beachfront view, realistic, " +
		"editorial travel magazine style, soft natural daylight, refined " +
		"tropical architecture, ocean and sky visible, palm trees, " +
		"infinity pool or lagoon, wide-angle composition"
	return fmt.Sprintf("%s. Hotel: %s. Location: %s. Prompt: %s", base, hotelName, location, prompt)
}

func (c *Client) generateInference(ctx context.Context, visual, outDir string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"inputs": visual,
		"parameters": map[string]any{
			"negative_prompt": "interior, bedroom, ceiling, roof beams, people, text, words, letters, " +
				"typography, logo, watermark, caption, signage, poster, brochure, flyer, " +
				"illustration, cartoon, CGI, 3d, low quality, blurry",
			"num_inference_steps": 30,
			"guidance_scale":      7.0,
		},
	})
	u := fmt.Sprintf("%s/%s", c.inferenceBase, c.model)
	body, err := c.post(ctx, "inference", u, payload)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(outDir, "hero.png")
	if err := writeImage(dest, body); err != nil {
		return "", err
	}
	log.Info().Str("path", dest).Msg("inference image generated")
	return fileURI(dest), nil
}

func (c *Client) generateFree(ctx context.Context, visual, outDir string) (string, error) {
	u := fmt.Sprintf("%s/prompt/%s?width=1080&height=1350&nologo=true&enhance=true",
		c.freeBase, url.PathEscape(visual))
	body, err := c.get(ctx, "pollinations", u, nil)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(outDir, "hero.png")
	if err := writeImage(dest, body); err != nil {
		return "", err
	}
	log.Info().Str("path", dest).Msg("free provider image generated")
	return fileURI(dest), nil
}

func (c *Client) get(ctx context.Context, endpoint, u string, hdr http.Header) ([]byte, error) {
	return c.do(ctx, endpoint, http.MethodGet, u, nil, hdr)
}

func (c *Client) post(ctx context.Context, endpoint, u string, body []byte) ([]byte, error) {
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+c.token)
	hdr.Set("Content-Type", "application/json")
	return c.do(ctx, endpoint, http.MethodPost, u, body, hdr)
}

// do performs a request with client-side rate limiting and retries on
// 429 and transient 5xx, honoring Retry-After when provided. Image
// endpoints answer with raw bytes; a JSON body on 200 means the
// provider refused to produce an image.
func (c *Client) do(ctx context.Context, endpoint, method, u string, body []byte, hdr http.Header) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		var reader io.Reader
		if body != nil {
			reader = strings.NewReader(string(body))
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, err
		}
		for k, vs := range hdr {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", "luxe-brochure/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.ObserveExternal("imagegen", endpoint, 0, time.Since(start))
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return nil, lastErr
		}
		observability.ObserveExternal("imagegen", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			ct := resp.Header.Get("Content-Type")
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			if strings.Contains(ct, "application/json") {
				return nil, fmt.Errorf("imagegen: provider returned JSON instead of image: %s", truncate(data, 200))
			}
			return data, nil

		case http.StatusPaymentRequired:
			resp.Body.Close()
			return nil, errPaymentRequired

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("imagegen: remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("imagegen: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

func writeImage(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func fileURI(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return "file://" + filepath.ToSlash(abs)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles each attempt (200ms, 400ms, 800ms...) with up to +50%
// jitter from crypto/rand so concurrent generations don't sync up.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
