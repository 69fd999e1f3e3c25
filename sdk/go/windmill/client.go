// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the API endpoint used by a Client whose
// Endpoint field is empty.
const DefaultEndpoint = "https://www.windmillai.com"

// apiPrefix is prepended to an API method name to form the request
// path.
const apiPrefix = "/api/v0/"

// A Client is an HTTP client with a Windmill API endpoint and an API
// key.
//
// It offers methods for creating experiments and looking up existing
// work units; the per-unit operations live on WorkUnit. A Client is
// safe for concurrent use provided its fields are not modified after
// the first call.
type Client struct {
	// HTTP client used to make requests. If nil, DefaultClient
	// is used.
	Client *http.Client `json:"-"`

	// API key identifying the account. Sent with every request;
	// never validated locally.
	APIKey string

	// Base URL of the Windmill API server, e.g.
	// "https://www.windmillai.com". If empty, DefaultEndpoint is
	// used.
	Endpoint string

	// Timeout for requests. Zero means no client-imposed
	// timeout: rely on each http.Request's context deadline
	// instead.
	Timeout time.Duration
}

// DefaultClient is the default http.Client used by a Client whose
// Client field is nil.
var DefaultClient = &http.Client{}

// NewClientFromEnv creates a new Client that uses the default HTTP
// client, with the API key and endpoint loaded from WINDMILLAI_*
// environment variables (if set) and
// $HOME/.config/windmill/settings.conf (if readable).
//
// If a value appears in both places, the environment variable wins.
//
// If there is an error (other than ENOENT) reading settings.conf,
// NewClientFromEnv logs the error and continues with environment
// variables only.
func NewClientFromEnv() *Client {
	vars := map[string]string{}
	home := os.Getenv("HOME")
	conffile := home + "/.config/windmill/settings.conf"
	if home == "" {
		// no $HOME => just use env vars
	} else if settings, err := os.Open(conffile); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARNING: error reading %s: %s", conffile, err)
		}
	} else {
		defer settings.Close()
		scanner := bufio.NewScanner(settings)
		for scanner.Scan() {
			kv := strings.SplitN(scanner.Text(), "=", 2)
			k := strings.TrimSpace(kv[0])
			if len(kv) != 2 || !strings.HasPrefix(k, "WINDMILLAI_") {
				// Silently skip leading # (comments),
				// blank lines, typos, or anything
				// else that doesn't look like a
				// namespaced variable.
				continue
			}
			vars[k] = strings.TrimSpace(kv[1])
		}
		if err = scanner.Err(); err != nil {
			log.Printf("WARNING: error reading %s: %s", conffile, err)
		}
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "WINDMILLAI_") {
			continue
		}
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			vars[kv[0]] = kv[1]
		}
	}
	return &Client{
		APIKey:   vars["WINDMILLAI_API_KEY"],
		Endpoint: vars["WINDMILLAI_ENDPOINT"],
	}
}

// Do applies the client's Timeout, if any, and then calls
// (*http.Client)Do().
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var cancel context.CancelFunc
	if c.Timeout > 0 {
		ctx := req.Context()
		ctx, cancel = context.WithDeadline(ctx, time.Now().Add(c.Timeout))
		req = req.WithContext(ctx)
	}
	resp, err := c.httpClient().Do(req)
	if err == nil && cancel != nil {
		// We need to call cancel() eventually, but we can't
		// use "defer cancel()" because the context has to
		// stay alive until the caller has finished reading
		// the response body.
		resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	} else if cancel != nil {
		cancel()
	}
	return resp, err
}

// cancelOnClose calls a provided CancelFunc when its wrapped
// ReadCloser's Close() method is called.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (coc cancelOnClose) Close() error {
	err := coc.ReadCloser.Close()
	coc.cancel()
	return err
}

// DoAndDecode performs req and unmarshals the response (which must
// be JSON) into dst. Use this instead of RequestAndDecode if you
// need more control of the http.Request object.
//
// A response with a non-2xx status is returned as an *APIError
// carrying the response body.
func (c *Client) DoAndDecode(dst interface{}, req *http.Request) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(req, resp, buf)
	}
	if dst == nil {
		return nil
	}
	return json.Unmarshal(buf, dst)
}

// queryValues converts an arbitrary struct or map to url.Values. For
// example,
//
//	checkSignalParams{Signal: "stop", Clear: false}
//
// becomes
//
//	url.Values{"signal": {"stop"}, "clear": {"false"}}
//
// params itself is returned if it is already an url.Values.
func queryValues(params interface{}) (url.Values, error) {
	if v, ok := params.(url.Values); ok {
		return v, nil
	}
	j, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var generic map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.UseNumber()
	err = dec.Decode(&generic)
	if err != nil {
		return nil, err
	}
	urlValues := url.Values{}
	for k, v := range generic {
		switch v := v.(type) {
		case string:
			urlValues.Set(k, v)
		case json.Number:
			urlValues.Set(k, v.String())
		case bool:
			// An explicit "false" is meaningful here: the
			// check_signal_active clear flag is always
			// present in the query.
			urlValues.Set(k, strconv.FormatBool(v))
		case nil:
			// omit
		default:
			j, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			urlValues.Set(k, string(j))
		}
	}
	return urlValues, nil
}

// RequestAndDecode performs an API request and unmarshals the
// response (which must be JSON) into dst. The given method name is
// appended to the endpoint's API path to form the request URL.
//
// For GET and HEAD requests the given params are sent as the query
// string; for other methods they are sent as a JSON request body.
func (c *Client) RequestAndDecode(dst interface{}, method, apiMethod string, params interface{}) error {
	return c.RequestAndDecodeContext(context.Background(), dst, method, apiMethod, params)
}

// RequestAndDecodeContext does the same as RequestAndDecode, but
// with a context
func (c *Client) RequestAndDecodeContext(ctx context.Context, dst interface{}, method, apiMethod string, params interface{}) error {
	urlString := c.apiURL(apiMethod)
	var body io.Reader
	if params == nil {
		// Nothing to send
	} else if method == http.MethodGet || method == http.MethodHead {
		urlValues, err := queryValues(params)
		if err != nil {
			return err
		}
		u, err := url.Parse(urlString)
		if err != nil {
			return err
		}
		u.RawQuery = urlValues.Encode()
		urlString = u.String()
	} else {
		j, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(j)
	}
	req, err := http.NewRequestWithContext(ctx, method, urlString, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.DoAndDecode(dst, req)
}

func (c *Client) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return DefaultClient
}

func (c *Client) apiURL(apiMethod string) string {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return strings.TrimSuffix(endpoint, "/") + apiPrefix + apiMethod
}
