// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package windmilltest

// Fixture identifiers shared by client and CLI tests
const (
	APIKey = "wmk_0123456789abcdef0123456789abcdef"

	SweepExperimentXID  = "xid_5f4dcc3b5aa765d6"
	SweepExperimentName = "sweep/learning-rate"

	NonexistentXID = "xid_totallynotexist"
	NonexistentWID = int64(9999)

	PreemptSignal = "preempt"
)
