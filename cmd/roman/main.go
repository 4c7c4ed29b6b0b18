// roman prints the Roman numeral for each integer argument.
//
//	go run ./cmd/roman 15 1994   # 15 -> XV, 1994 -> MCMXCIV
//
// With no arguments it converts 15.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/aanand-mishra/student-manager/internal/roman"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"15"}
	}

	failed := false
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			slog.Error("not an integer", slog.String("arg", arg))
			failed = true
			continue
		}

		s, err := roman.ToRoman(n)
		if err != nil {
			slog.Error("cannot convert", slog.String("error", err.Error()))
			failed = true
			continue
		}
		fmt.Printf("%d -> %s\n", n, s)
	}

	if failed {
		os.Exit(1)
	}
}
