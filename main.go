// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/sofloc/sofloc/cmd/sofloc"

func main() {
	cmd.Execute()
}
