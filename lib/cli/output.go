// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
)

// writeObject writes obj to stdout in the requested format: "json"
// (indented) or "yaml".
func writeObject(stdout io.Writer, format string, obj interface{}) error {
	switch format {
	case "yaml":
		buf, err := yaml.Marshal(obj)
		if err != nil {
			return err
		}
		_, err = stdout.Write(buf)
		return err
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(obj)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
