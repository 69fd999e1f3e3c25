// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmill

import (
	"context"
	"log"
	"net/http"
	"sync"
)

// A WorkUnit is a handle for one work unit of an experiment: the
// (xid, wid) identifier pair plus the Client used to reach the
// server. It caches no other state; every method issues exactly one
// API request.
type WorkUnit struct {
	// Experiment identifier, shared by all work units of the
	// experiment.
	XID string `json:"xid"`

	// Work unit identifier, unique within the experiment.
	WID int64 `json:"wid"`

	client *Client
}

// workUnitParams identifies a work unit in request bodies and query
// strings.
type workUnitParams struct {
	APIKey string `json:"api_key"`
	XID    string `json:"xid"`
	WID    int64  `json:"wid"`
}

func (wu *WorkUnit) identity() workUnitParams {
	return workUnitParams{APIKey: wu.client.APIKey, XID: wu.XID, WID: wu.WID}
}

// GetParameters retrieves the parameters assigned to this work unit
// when its experiment was created. A work unit created without
// parameters has an empty mapping.
func (wu *WorkUnit) GetParameters(ctx context.Context) (Parameters, error) {
	var params Parameters
	err := wu.client.RequestAndDecodeContext(ctx, &params, http.MethodGet, "get_work_unit_parameters", wu.identity())
	if err != nil {
		return nil, err
	}
	return params, nil
}

type diaryEntryParams struct {
	APIKey string `json:"api_key"`
	XID    string `json:"xid"`
	Entry  string `json:"entry"`
}

// AddDiaryEntry appends a free-text note to the experiment's diary.
// The diary is scoped to the experiment, so sibling work units share
// one diary.
func (wu *WorkUnit) AddDiaryEntry(ctx context.Context, entry string) error {
	return wu.client.RequestAndDecodeContext(ctx, nil, http.MethodPost, "add_diary_entry", diaryEntryParams{
		APIKey: wu.client.APIKey,
		XID:    wu.XID,
		Entry:  entry,
	})
}

type measurementsParams struct {
	APIKey       string      `json:"api_key"`
	XID          string      `json:"xid"`
	WID          int64       `json:"wid"`
	Measurements interface{} `json:"measurements"`
}

// RecordMeasurements uploads measurements for this work unit.
// The measurements value can be anything the server's JSON schema
// accepts; it is not validated locally.
func (wu *WorkUnit) RecordMeasurements(ctx context.Context, measurements interface{}) error {
	return wu.client.RequestAndDecodeContext(ctx, nil, http.MethodPost, "add_measurements", measurementsParams{
		APIKey:       wu.client.APIKey,
		XID:          wu.XID,
		WID:          wu.WID,
		Measurements: measurements,
	})
}

// Complete marks this work unit finished. The experiment as a whole
// is finished when all of its work units are. Completion is not
// tracked locally, and completing a work unit twice is not an error
// here.
func (wu *WorkUnit) Complete(ctx context.Context) error {
	return wu.client.RequestAndDecodeContext(ctx, nil, http.MethodPost, "complete_experiment", wu.identity())
}

var deprecatedCompleteExperiment sync.Once

// CompleteExperiment marks this work unit finished.
//
// Deprecated: Use Complete instead.
func (wu *WorkUnit) CompleteExperiment(ctx context.Context) error {
	deprecatedCompleteExperiment.Do(func() {
		log.Printf("WARNING: WorkUnit.CompleteExperiment is deprecated, use Complete")
	})
	return wu.Complete(ctx)
}

type signalParams struct {
	APIKey string `json:"api_key"`
	XID    string `json:"xid"`
	WID    int64  `json:"wid"`
	Signal string `json:"signal"`
}

// RegisterSignal declares a named signal on this work unit. A newly
// registered signal is inactive.
func (wu *WorkUnit) RegisterSignal(ctx context.Context, signal string) error {
	return wu.signalRequest(ctx, "register_signal", signal)
}

// ActivateSignal raises the named signal.
func (wu *WorkUnit) ActivateSignal(ctx context.Context, signal string) error {
	return wu.signalRequest(ctx, "activate_signal", signal)
}

// DeactivateSignal clears the named signal.
func (wu *WorkUnit) DeactivateSignal(ctx context.Context, signal string) error {
	return wu.signalRequest(ctx, "deactivate_signal", signal)
}

func (wu *WorkUnit) signalRequest(ctx context.Context, apiMethod, signal string) error {
	return wu.client.RequestAndDecodeContext(ctx, nil, http.MethodPost, apiMethod, signalParams{
		APIKey: wu.client.APIKey,
		XID:    wu.XID,
		WID:    wu.WID,
		Signal: signal,
	})
}

type checkSignalParams struct {
	APIKey string `json:"api_key"`
	XID    string `json:"xid"`
	WID    int64  `json:"wid"`
	Signal string `json:"signal"`
	Clear  bool   `json:"clear"`
}

// CheckSignalActive reports whether the named signal is active. With
// deactivate=true the server clears the signal in the same request,
// so a signal raised once is observed at most once.
func (wu *WorkUnit) CheckSignalActive(ctx context.Context, signal string, deactivate bool) (bool, error) {
	var resp struct {
		Active bool `json:"active"`
	}
	err := wu.client.RequestAndDecodeContext(ctx, &resp, http.MethodGet, "check_signal_active", checkSignalParams{
		APIKey: wu.client.APIKey,
		XID:    wu.XID,
		WID:    wu.WID,
		Signal: signal,
		Clear:  deactivate,
	})
	if err != nil {
		return false, err
	}
	return resp.Active, nil
}
