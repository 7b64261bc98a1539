package export

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appcfg "github.com/echomeet/core/internal/config"
)

// s3Uploader pushes export archives to S3-compatible storage with a
// hand-signed SigV4 PUT. Works against AWS and path-style endpoints
// (MinIO, R2).
type s3Uploader struct {
	scheme       string
	host         string
	basePath     string
	bucket       string
	region       string
	accessKey    string
	secretKey    string
	customDomain string
	pathStyle    bool
	client       *http.Client
}

func newS3Uploader(opts appcfg.S3Options) (*s3Uploader, error) {
	u := &s3Uploader{
		bucket:       strings.TrimSpace(opts.Bucket),
		region:       strings.TrimSpace(opts.Region),
		accessKey:    strings.TrimSpace(opts.AccessKeyID),
		secretKey:    strings.TrimSpace(opts.SecretAccessKey),
		customDomain: strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/"),
		pathStyle:    opts.PathStyleAccess,
		client:       &http.Client{Timeout: 45 * time.Second},
	}
	if u.bucket == "" || u.region == "" || u.accessKey == "" || u.secretKey == "" {
		return nil, errors.New("incomplete s3 config: bucket, region and credentials are required")
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = "https://s3." + u.region + ".amazonaws.com"
	} else if !opts.PathStyleAccess {
		// Custom endpoints rarely support virtual-hosted buckets.
		u.pathStyle = true
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid s3 endpoint: %s", endpoint)
	}
	u.scheme = parsed.Scheme
	u.host = parsed.Host
	u.basePath = strings.Trim(parsed.Path, "/")
	return u, nil
}

// Upload PUTs the payload under objectKey and returns the object's URL.
func (u *s3Uploader) Upload(ctx context.Context, objectKey string, payload []byte, contentType string) (string, error) {
	key := cleanObjectKey(objectKey)
	if key == "" {
		return "", errors.New("invalid s3 object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	host, uri := u.target(key)
	endpoint := u.scheme + "://" + host + uri

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(payload)))
	u.authorize(req, hexSHA256(payload), time.Now().UTC())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return "", fmt.Errorf("s3 upload failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if u.customDomain != "" {
		return u.customDomain + "/" + key, nil
	}
	return endpoint, nil
}

// target resolves the request host and canonical URI for an object key.
func (u *s3Uploader) target(key string) (host, uri string) {
	segments := make([]string, 0, 3)
	if u.basePath != "" {
		segments = append(segments, u.basePath)
	}

	host = u.host
	if u.pathStyle {
		segments = append(segments, u.bucket)
	} else if !strings.HasPrefix(strings.ToLower(host), strings.ToLower(u.bucket)+".") {
		host = u.bucket + "." + host
	}

	segments = append(segments, escapeObjectKey(key))
	return host, "/" + strings.Join(segments, "/")
}

// authorize signs the request per SigV4. Header names are listed in the
// sorted order the canonical request requires.
func (u *s3Uploader) authorize(req *http.Request, payloadHash string, now time.Time) {
	amzDate := now.Format("20060102T150405Z")
	scope := now.Format("20060102") + "/" + u.region + "/s3/aws4_request"

	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	names := []string{"content-length", "content-type", "host", "x-amz-content-sha256", "x-amz-date"}
	var headerLines strings.Builder
	for _, name := range names {
		value := req.Header.Get(name)
		if name == "host" {
			value = req.URL.Host
		}
		headerLines.WriteString(name + ":" + strings.TrimSpace(value) + "\n")
	}
	signedHeaders := strings.Join(names, ";")

	canonicalRequest := strings.Join([]string{
		http.MethodPut,
		req.URL.EscapedPath(),
		"",
		headerLines.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	signingKey := []byte("AWS4" + u.secretKey)
	for _, part := range []string{now.Format("20060102"), u.region, "s3", "aws4_request"} {
		signingKey = hmacSHA256(signingKey, part)
	}

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		u.accessKey, scope, signedHeaders,
		hex.EncodeToString(hmacSHA256(signingKey, stringToSign)),
	))
}

func cleanObjectKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}

func escapeObjectKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(data))
	return mac.Sum(nil)
}
