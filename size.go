/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "fmt"

// humanReadableSize formats a byte count with SI prefixes.
func humanReadableSize(bytes int64) string {
	if bytes < 1000 {
		return fmt.Sprintf("%d B", bytes)
	}

	value := float64(bytes)
	for _, prefix := range "kMGTPE" {
		value /= 1000
		if value < 1000 {
			return fmt.Sprintf("%.1f %cB", value, prefix)
		}
	}

	return fmt.Sprintf("%.1f EB", value)
}
