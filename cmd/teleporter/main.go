// Command teleporter brute-forces the register-8 value the teleporter
// puzzle accepts, by running one engine per candidate concurrently until
// one reports success.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"vm15/search"
)

func main() {
	optImage := getopt.StringLong("image", 'i', "", "Program image path")
	optCheckpoint := getopt.StringLong("checkpoint", 'c', "", "Transcript to replay before the teleporter check")
	optSuccess := getopt.StringLong("success", 's', "", "Substring expected in the output of the winning candidate")
	optHelp := getopt.BoolLong("help", 'h', "Show usage")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return
	}
	if *optImage == "" {
		fmt.Fprintln(os.Stderr, "teleporter: --image is required")
		os.Exit(1)
	}
	if *optSuccess == "" {
		fmt.Fprintln(os.Stderr, "teleporter: --success is required")
		os.Exit(1)
	}

	image, err := os.ReadFile(*optImage)
	if err != nil {
		fmt.Fprintln(os.Stderr, "teleporter:", err)
		os.Exit(1)
	}

	var transcript search.Transcript
	if *optCheckpoint != "" {
		data, err := os.ReadFile(*optCheckpoint)
		if err != nil {
			fmt.Fprintln(os.Stderr, "teleporter:", err)
			os.Exit(1)
		}
		transcript = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	marker := *optSuccess
	isSuccess := func(output string) bool { return strings.Contains(output, marker) }

	result, err := search.Find(context.Background(), image, transcript, search.AllCandidates(), isSuccess)
	if err != nil {
		fmt.Fprintln(os.Stderr, "teleporter:", err)
		os.Exit(1)
	}

	fmt.Printf("register 8 = %d\n", result.Register8)
}
