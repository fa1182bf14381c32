// SPDX-License-Identifier: MIT

// Command rigmap validates, inspects and evaluates facial rig mapping
// definitions.
//
//	rigmap validate face.json retarget.yaml
//	rigmap inspect face.json
//	rigmap eval --def face.json --def retarget.yaml --frames frames.json
//	rigmap eval --config rigmap.yaml < pose.json
//	rigmap watch face.json retarget.yaml
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
