// pkg/sysreqs/utils.go
package sysreqs

import "os/exec"

func commandAvailable(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
