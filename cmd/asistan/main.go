// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command asistan is the terminal client for the energy legislation
// assistant: an interactive chat screen, a one-shot question mode, and
// a development stub of the backend.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
