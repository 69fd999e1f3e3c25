// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"context"
	"net/http"
)

// Parameters is an arbitrary mapping of parameter names to values,
// fixed per work unit when its experiment is created.
type Parameters map[string]interface{}

// CreateExperimentOptions are the arguments to
// Client.CreateExperiment.
type CreateExperimentOptions struct {
	// Experiment name. Slashes are allowed; the service displays
	// "group/name" style names hierarchically.
	Name string

	// Optional tags for filtering experiments in the UI.
	Tags []string

	// Optional per-work-unit parameters. The experiment is
	// created with one work unit per element; with no elements
	// it gets a single work unit with no parameters.
	Parameters []Parameters
}

type createExperimentParams struct {
	APIKey     string       `json:"api_key"`
	Name       string       `json:"name"`
	Tags       []string     `json:"tags,omitempty"`
	Parameters []Parameters `json:"parameters,omitempty"`
}

// CreateExperiment creates a new experiment and returns its work
// units in the order the server assigned them: work unit i carries
// options.Parameters[i]. An experiment created without parameters
// has exactly one work unit.
func (c *Client) CreateExperiment(ctx context.Context, options CreateExperimentOptions) ([]*WorkUnit, error) {
	var resp struct {
		WorkUnits []*WorkUnit `json:"work_units"`
	}
	err := c.RequestAndDecodeContext(ctx, &resp, http.MethodPost, "create_experiment", createExperimentParams{
		APIKey:     c.APIKey,
		Name:       options.Name,
		Tags:       options.Tags,
		Parameters: options.Parameters,
	})
	if err != nil {
		return nil, err
	}
	for _, wu := range resp.WorkUnits {
		wu.client = c
	}
	return resp.WorkUnits, nil
}

// GetWorkUnit returns a handle for an existing work unit, after
// confirming with the server that it exists. If the server reports
// that it does not, the returned error is a *WorkUnitNotFoundError.
func (c *Client) GetWorkUnit(ctx context.Context, xid string, wid int64) (*WorkUnit, error) {
	var resp struct {
		Exists bool `json:"exists"`
	}
	err := c.RequestAndDecodeContext(ctx, &resp, http.MethodGet, "verify_work_unit_exists", workUnitParams{
		APIKey: c.APIKey,
		XID:    xid,
		WID:    wid,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Exists {
		return nil, &WorkUnitNotFoundError{XID: xid, WID: wid}
	}
	return c.WorkUnit(xid, wid), nil
}

// WorkUnit returns a handle for the given identifiers without
// checking that the work unit exists. It makes no API calls;
// operations on a nonexistent work unit fail server-side.
func (c *Client) WorkUnit(xid string, wid int64) *WorkUnit {
	return &WorkUnit{XID: xid, WID: wid, client: c}
}
