// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Aerostat - Daewoo air conditioner UART bridge

package main

import (
	"os"

	"github.com/Thermoquad/aerostat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
