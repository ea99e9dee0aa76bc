// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/alfine/alfine/cmd/alfine"

func main() {
	cmd.Execute()
}
