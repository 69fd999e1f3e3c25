// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmilltest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// StubResponse struct with response status and body
type StubResponse struct {
	Status int
	Body   string
}

// StubRequest is one request as recorded by a ServerStub.
type StubRequest struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        string
}

// DecodeBody unmarshals the recorded request body as a JSON object.
func (r StubRequest) DecodeBody() (map[string]interface{}, error) {
	var decoded map[string]interface{}
	err := json.Unmarshal([]byte(r.Body), &decoded)
	return decoded, err
}

// ServerStub is an http.Handler answering requests from a response
// map keyed by URL path, recording everything it is asked so tests
// can assert on the wire traffic afterwards. A request for a path
// with no stubbed response gets a 500.
//
// Ex: /api/v0/check_signal_active = windmilltest.StubResponse{200, `{"active":true}`}
type ServerStub struct {
	Responses map[string]StubResponse

	mtx      sync.Mutex
	requests []StubRequest
}

func (stub *ServerStub) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	stub.mtx.Lock()
	stub.requests = append(stub.requests, StubRequest{
		Method:      req.Method,
		Path:        req.URL.Path,
		Query:       req.URL.Query(),
		ContentType: req.Header.Get("Content-Type"),
		Body:        string(body),
	})
	stub.mtx.Unlock()

	pathResponse, ok := stub.Responses[req.URL.Path]
	if !ok {
		resp.WriteHeader(500)
		resp.Write([]byte(``))
		return
	}
	if pathResponse.Status > 0 {
		resp.WriteHeader(pathResponse.Status)
	}
	resp.Write([]byte(pathResponse.Body))
}

// Requests returns a copy of the requests recorded so far.
func (stub *ServerStub) Requests() []StubRequest {
	stub.mtx.Lock()
	defer stub.mtx.Unlock()
	return append([]StubRequest(nil), stub.requests...)
}
