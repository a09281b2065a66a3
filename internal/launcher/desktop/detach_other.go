//go:build !unix

package desktop

import "os/exec"

func setDetached(*exec.Cmd) {}
