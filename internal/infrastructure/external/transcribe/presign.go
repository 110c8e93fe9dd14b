// Package transcribe is a client for the real-time streaming transcription
// service over a SigV4-presigned WebSocket.
package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/johnquangdev/call-insights/pkg/config"
)

const (
	signingService = "transcribe"
	streamPath     = "/stream-transcription-websocket"

	// SHA-256 of an empty body; the handshake carries no payload
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// Presigner produces short-lived signed URLs for the streaming endpoint
type Presigner struct {
	credentials   aws.CredentialsProvider
	signer        *v4.Signer
	region        string
	endpoint      string
	languageCode  string
	mediaEncoding string
	sampleRate    int
	expiry        time.Duration
	now           func() time.Time
}

// NewPresigner creates a presigner for region. cfg.Endpoint, when set,
// replaces the regional endpoint.
func NewPresigner(credentials aws.CredentialsProvider, region string, cfg *config.TranscribeConfig) *Presigner {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("wss://transcribestreaming.%s.amazonaws.com:8443%s", region, streamPath)
	}
	return &Presigner{
		credentials:   credentials,
		signer:        v4.NewSigner(),
		region:        region,
		endpoint:      endpoint,
		languageCode:  cfg.LanguageCode,
		mediaEncoding: cfg.MediaEncoding,
		sampleRate:    cfg.SampleRate,
		expiry:        cfg.URLExpiry,
		now:           time.Now,
	}
}

// PresignURL signs the streaming endpoint with the current credentials
func (p *Presigner) PresignURL(ctx context.Context) (string, error) {
	if p.credentials == nil {
		return "", fmt.Errorf("no AWS credentials configured")
	}
	creds, err := p.credentials.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid streaming endpoint %q: %w", p.endpoint, err)
	}

	// Sign as the equivalent HTTP request, then restore the ws scheme
	wsScheme := u.Scheme
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	case "ws":
		u.Scheme = "http"
	default:
		return "", fmt.Errorf("unsupported streaming endpoint scheme %q", u.Scheme)
	}

	query := u.Query()
	query.Set("language-code", p.languageCode)
	query.Set("media-encoding", p.mediaEncoding)
	query.Set("sample-rate", strconv.Itoa(p.sampleRate))
	query.Set("X-Amz-Expires", strconv.Itoa(int(p.expiry.Seconds())))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build signing request: %w", err)
	}

	signed, _, err := p.signer.PresignHTTP(ctx, creds, req, emptyPayloadHash, signingService, p.region, p.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to presign streaming URL: %w", err)
	}

	signedURL, err := url.Parse(signed)
	if err != nil {
		return "", fmt.Errorf("failed to parse presigned URL: %w", err)
	}
	signedURL.Scheme = wsScheme
	return signedURL.String(), nil
}
