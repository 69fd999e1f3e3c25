// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package windmill is a client library for the Windmill experiment
// tracking service.
//
// A Client holds an API key and an API endpoint. Experiments are
// created through the Client, and the resulting WorkUnit handles
// carry the rest of the API: parameters, measurements, diary
// entries, signals, and artifact uploads.
package windmill
