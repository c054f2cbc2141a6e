package helper

import (
	"os"
	"runtime"
	"strings"
)

// getTarget returns the host target using GNU GCC/LLVM naming conventions.
func getTarget() map[string]any {
	t := getPlatform()

	arch, _ := t["arch"].(string)

	switch arch {
	case "386":
		arch = "i386"
	case "amd64":
		arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				arch = "armv" + arm
			}
		}
	case "arm64":
		if t["os"] != "darwin" {
			arch = "aarch64"
		}
	case "mipsle":
		arch = "mipsel"
	}

	t["arch"] = arch

	return t
}

// getPlatform returns the host target using Go conventions.
func getPlatform() map[string]any {
	o, ok := os.LookupEnv("GOHOSTOS")
	if !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	a, ok := os.LookupEnv("GOHOSTARCH")
	if !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return map[string]any{"os": o, "arch": a}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}
