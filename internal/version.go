package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

// Set with buildflag if built in pipeline and not using go install
var (
	BuildVersion  = ""
	BuildChecksum = ""
)

type versionPrinter struct {
	out io.Writer
}

func (v versionPrinter) Run(_ context.Context) error {
	hasPrintedVersion := false
	if BuildVersion != "" {
		hasPrintedVersion = true
		fmt.Fprintln(v.out, "version: "+BuildVersion)
	}
	if BuildChecksum != "" {
		fmt.Fprintln(v.out, "checksum: "+BuildChecksum)
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("failed to read build info")
	}
	if !hasPrintedVersion {
		fmt.Fprintln(v.out, "version: "+bi.Main.Version)
	}
	fmt.Fprintln(v.out, "go version: "+bi.GoVersion)
	for _, dep := range bi.Deps {
		fmt.Fprintf(v.out, "%s %s\n", dep.Path, dep.Version)
	}
	return nil
}
