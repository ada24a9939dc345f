// Command torque-sweep steps actuator 11 through a fixed torque ramp via
// the robstride CLI. It takes no flags: running it performs the sweep.
package main

import (
	"os"

	"github.com/strideworks/robstride/pkg/sweep"
)

func main() {
	os.Exit(sweep.New().Run())
}
