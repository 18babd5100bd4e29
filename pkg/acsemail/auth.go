package acsemail

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rotisserie/eris"
)

// ConnectionString holds the parts of an ACS connection string.
type ConnectionString struct {
	Endpoint  string
	AccessKey string
}

// ParseConnectionString parses "endpoint=...;accesskey=..." with keys in
// any case and order. The access key is optional.
func ParseConnectionString(s string) (ConnectionString, error) {
	var cs ConnectionString
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return ConnectionString{}, eris.Errorf("acsemail: malformed connection string segment %q", part)
		}
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "endpoint":
			cs.Endpoint = strings.TrimRight(strings.TrimSpace(v), "/")
		case "accesskey":
			// Base64 keys may end in '=' which Cut leaves in v.
			cs.AccessKey = strings.TrimSpace(v)
		}
	}
	if cs.Endpoint == "" {
		return ConnectionString{}, eris.New("acsemail: connection string has no endpoint")
	}
	return cs, nil
}

// hmacPolicy signs each request with the ACS access key.
type hmacPolicy struct {
	key []byte
	now func() time.Time
}

func newHMACPolicy(accessKey string) (*hmacPolicy, error) {
	key, err := base64.StdEncoding.DecodeString(accessKey)
	if err != nil {
		return nil, eris.Wrap(err, "acsemail: decode access key")
	}
	return &hmacPolicy{key: key, now: time.Now}, nil
}

func (p *hmacPolicy) Do(req *policy.Request) (*http.Response, error) {
	raw := req.Raw()

	var body []byte
	if b := req.Body(); b != nil {
		var err error
		body, err = io.ReadAll(b)
		if err != nil {
			return nil, eris.Wrap(err, "acsemail: read body for signing")
		}
		if err := req.RewindBody(); err != nil {
			return nil, eris.Wrap(err, "acsemail: rewind body")
		}
	}

	sum := sha256.Sum256(body)
	contentHash := base64.StdEncoding.EncodeToString(sum[:])
	date := p.now().UTC().Format(http.TimeFormat)
	host := raw.URL.Host

	pathAndQuery := raw.URL.Path
	if raw.URL.RawQuery != "" {
		pathAndQuery += "?" + raw.URL.RawQuery
	}

	raw.Header.Set("x-ms-date", date)
	raw.Header.Set("x-ms-content-sha256", contentHash)
	raw.Header.Set("Authorization", "HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+
		sign(p.key, raw.Method, pathAndQuery, date, host, contentHash))

	return req.Next()
}

func sign(key []byte, method, pathAndQuery, date, host, contentHash string) string {
	var sb bytes.Buffer
	sb.WriteString(method)
	sb.WriteByte('\n')
	sb.WriteString(pathAndQuery)
	sb.WriteByte('\n')
	sb.WriteString(date + ";" + host + ";" + contentHash)

	mac := hmac.New(sha256.New, key)
	mac.Write(sb.Bytes())
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
