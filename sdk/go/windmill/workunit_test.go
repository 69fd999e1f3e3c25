// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(&workUnitSuite{})

type workUnitSuite struct {
	stub   *stubTransport
	client *Client
}

func (s *workUnitSuite) SetUpTest(c *check.C) {
	s.stub = &stubTransport{
		Responses: map[string]string{
			"/api/v0/get_work_unit_parameters": `{}`,
			"/api/v0/add_diary_entry":          `{}`,
			"/api/v0/add_measurements":         `{}`,
			"/api/v0/complete_experiment":      `{}`,
			"/api/v0/register_signal":          `{}`,
			"/api/v0/activate_signal":          `{}`,
			"/api/v0/deactivate_signal":        `{}`,
			"/api/v0/check_signal_active":      `{"active":true}`,
		},
	}
	s.client = &Client{
		Client:   &http.Client{Transport: s.stub},
		APIKey:   "key",
		Endpoint: "https://windmill.example",
	}
}

func (s *workUnitSuite) workUnit() *WorkUnit {
	return s.client.WorkUnit("xid_123", 4)
}

func (s *workUnitSuite) TestGetParameters(c *check.C) {
	s.stub.Responses["/api/v0/get_work_unit_parameters"] = `{"learning_rate":0.1,"layers":4}`
	params, err := s.workUnit().GetParameters(context.Background())
	c.Assert(err, check.IsNil)
	c.Check(params, check.DeepEquals, Parameters{
		"learning_rate": 0.1,
		"layers":        float64(4),
	})

	c.Assert(s.stub.Requests, check.HasLen, 1)
	req := s.stub.Requests[0]
	c.Check(req.Method, check.Equals, "GET")
	c.Check(req.URL.Path, check.Equals, "/api/v0/get_work_unit_parameters")
	c.Check(req.URL.Query(), check.DeepEquals, url.Values{
		"api_key": {"key"},
		"xid":     {"xid_123"},
		"wid":     {"4"},
	})
}

func (s *workUnitSuite) TestGetParametersEmpty(c *check.C) {
	params, err := s.workUnit().GetParameters(context.Background())
	c.Assert(err, check.IsNil)
	c.Check(params, check.NotNil)
	c.Check(params, check.HasLen, 0)
}

func (s *workUnitSuite) TestAddDiaryEntry(c *check.C) {
	err := s.workUnit().AddDiaryEntry(context.Background(), "tuning finished")
	c.Assert(err, check.IsNil)
	c.Assert(s.stub.Requests, check.HasLen, 1)
	req := s.stub.Requests[0]
	c.Check(req.Method, check.Equals, "POST")
	c.Check(req.URL.Path, check.Equals, "/api/v0/add_diary_entry")
	// The diary is experiment-scoped, so no wid rides in this
	// request.
	c.Check(s.stub.Bodies[0], check.Equals, `{"api_key":"key","xid":"xid_123","entry":"tuning finished"}`)
}

func (s *workUnitSuite) TestRecordMeasurements(c *check.C) {
	err := s.workUnit().RecordMeasurements(context.Background(), map[string]interface{}{
		"loss": 0.25,
		"step": 100,
	})
	c.Assert(err, check.IsNil)
	c.Check(s.stub.Requests[0].URL.Path, check.Equals, "/api/v0/add_measurements")

	var body map[string]interface{}
	c.Assert(json.Unmarshal([]byte(s.stub.Bodies[0]), &body), check.IsNil)
	c.Check(body, check.DeepEquals, map[string]interface{}{
		"api_key":      "key",
		"xid":          "xid_123",
		"wid":          float64(4),
		"measurements": map[string]interface{}{"loss": 0.25, "step": float64(100)},
	})
}

func (s *workUnitSuite) TestRecordMeasurementsList(c *check.C) {
	// The measurements value is passed through untouched, so a
	// batch can be a list as easily as a mapping.
	err := s.workUnit().RecordMeasurements(context.Background(), []map[string]interface{}{
		{"step": 1, "loss": 0.9},
		{"step": 2, "loss": 0.8},
	})
	c.Assert(err, check.IsNil)
	var body map[string]interface{}
	c.Assert(json.Unmarshal([]byte(s.stub.Bodies[0]), &body), check.IsNil)
	c.Check(body["measurements"], check.DeepEquals, []interface{}{
		map[string]interface{}{"step": float64(1), "loss": 0.9},
		map[string]interface{}{"step": float64(2), "loss": 0.8},
	})
}

func (s *workUnitSuite) TestComplete(c *check.C) {
	err := s.workUnit().Complete(context.Background())
	c.Assert(err, check.IsNil)
	c.Assert(s.stub.Requests, check.HasLen, 1)
	c.Check(s.stub.Requests[0].Method, check.Equals, "POST")
	c.Check(s.stub.Requests[0].URL.Path, check.Equals, "/api/v0/complete_experiment")
	c.Check(s.stub.Bodies[0], check.Equals, `{"api_key":"key","xid":"xid_123","wid":4}`)
}

func (s *workUnitSuite) TestCompleteExperimentDeprecated(c *check.C) {
	err := s.workUnit().CompleteExperiment(context.Background())
	c.Assert(err, check.IsNil)
	err = s.workUnit().Complete(context.Background())
	c.Assert(err, check.IsNil)
	// The deprecated name produces a request identical to
	// Complete's.
	c.Assert(s.stub.Requests, check.HasLen, 2)
	c.Check(s.stub.Requests[0].URL.String(), check.Equals, s.stub.Requests[1].URL.String())
	c.Check(s.stub.Bodies[0], check.Equals, s.stub.Bodies[1])
}

func (s *workUnitSuite) TestSignalRoundTrip(c *check.C) {
	wu := s.workUnit()
	for i, trial := range []struct {
		call func(context.Context, string) error
		path string
	}{
		{wu.RegisterSignal, "/api/v0/register_signal"},
		{wu.ActivateSignal, "/api/v0/activate_signal"},
		{wu.DeactivateSignal, "/api/v0/deactivate_signal"},
	} {
		err := trial.call(context.Background(), "preempt")
		c.Assert(err, check.IsNil)
		c.Check(s.stub.Requests[i].Method, check.Equals, "POST")
		c.Check(s.stub.Requests[i].URL.Path, check.Equals, trial.path)
		c.Check(s.stub.Bodies[i], check.Equals, `{"api_key":"key","xid":"xid_123","wid":4,"signal":"preempt"}`)
	}
}

func (s *workUnitSuite) TestCheckSignalActive(c *check.C) {
	active, err := s.workUnit().CheckSignalActive(context.Background(), "preempt", false)
	c.Assert(err, check.IsNil)
	c.Check(active, check.Equals, true)
	c.Check(s.stub.Requests[0].Method, check.Equals, "GET")
	c.Check(s.stub.Requests[0].URL.Path, check.Equals, "/api/v0/check_signal_active")
	c.Check(s.stub.Requests[0].URL.Query(), check.DeepEquals, url.Values{
		"api_key": {"key"},
		"xid":     {"xid_123"},
		"wid":     {"4"},
		"signal":  {"preempt"},
		"clear":   {"false"},
	})

	s.stub.Responses["/api/v0/check_signal_active"] = `{"active":false}`
	active, err = s.workUnit().CheckSignalActive(context.Background(), "preempt", true)
	c.Assert(err, check.IsNil)
	c.Check(active, check.Equals, false)
	c.Check(s.stub.Requests[1].URL.Query().Get("clear"), check.Equals, "true")
}

func (s *workUnitSuite) TestServerRejection(c *check.C) {
	s.client.Client = &http.Client{Transport: &statusTransport{
		status: "403 Forbidden",
		code:   403,
		body:   "invalid api key",
	}}
	_, err := s.workUnit().GetParameters(context.Background())
	c.Assert(err, check.NotNil)
	var apiErr *APIError
	c.Assert(errors.As(err, &apiErr), check.Equals, true)
	c.Check(apiErr.StatusCode, check.Equals, 403)
	c.Check(apiErr.Body, check.Equals, "invalid api key")
	c.Check(strings.HasSuffix(err.Error(), "403 Forbidden: invalid api key"), check.Equals, true)
}
