//go:build !linux

package tools

import "fmt"

func pressMediaButton(button string) error {
	return fmt.Errorf("media controls are not supported on this platform")
}
