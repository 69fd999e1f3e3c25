// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"fmt"
	"net/http"
	"net/url"
)

// An APIError is returned when the server responds to an API request
// with a non-2xx status. The windmill server puts its diagnostic
// text in the response body, so Body is carried verbatim.
type APIError struct {
	Method     string
	URL        url.URL
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	s := fmt.Sprintf("request failed: %s", e.URL.String())
	if e.Status != "" {
		s = s + ": " + e.Status
	}
	if e.Body != "" {
		s = s + ": " + e.Body
	}
	return s
}

func newAPIError(req *http.Request, resp *http.Response, buf []byte) *APIError {
	return &APIError{
		Method:     req.Method,
		URL:        *req.URL,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(buf),
	}
}

// A WorkUnitNotFoundError is returned by GetWorkUnit when the server
// reports that no work unit matches the requested identifiers.
type WorkUnitNotFoundError struct {
	XID string
	WID int64
}

func (e *WorkUnitNotFoundError) Error() string {
	return fmt.Sprintf("work unit %d in experiment %q does not exist", e.WID, e.XID)
}
