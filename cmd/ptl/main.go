package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// ptl is a short alias that replaces itself with pertloom.
func main() {
	bin, err := exec.LookPath("pertloom")
	if err != nil {
		fmt.Fprintln(os.Stderr, "ptl: pertloom not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"pertloom"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "ptl: %v\n", err)
		os.Exit(1)
	}
}
