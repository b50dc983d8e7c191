package camera

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var execCommandContext = exec.CommandContext

// ResetDevice power-cycles a USB camera with usbreset. id is anything
// usbreset accepts: bus/device, vendor:product or a product name.
func ResetDevice(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("usbreset: empty device id")
	}
	out, err := execCommandContext(ctx, "usbreset", id).CombinedOutput()
	if err != nil {
		return fmt.Errorf("usbreset %s: %w (output: %s)", id, err, strings.TrimSpace(string(out)))
	}
	diagf("usbreset %s: %s", id, strings.TrimSpace(string(out)))
	return nil
}
