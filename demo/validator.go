/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: validator.go
Description: Sample validator target for the Akaylee Repairer. Accepts ISO
dates of the form YYYY-MM-DD. Exits 0 when the input matches, 255 when the
input is a proper prefix of a matching string (truncated), and 1 otherwise.
Reads its first argument as a file path, or standard input when absent.
*/

package main

import (
	"io"
	"os"
	"regexp"
)

var datePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

// shape is the per-position character class of a full match: 'd' digit, '-' dash
const shape = "dddd-dd-dd"

// isTruncated reports whether the input is a proper prefix of some matching string
func isTruncated(data []byte) bool {
	if len(data) >= len(shape) {
		return false
	}
	for i, b := range data {
		switch shape[i] {
		case 'd':
			if b < '0' || b > '9' {
				return false
			}
		case '-':
			if b != '-' {
				return false
			}
		}
	}
	return true
}

func main() {
	var data []byte
	var err error
	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		os.Exit(1)
	}

	if datePattern.Match(data) {
		os.Exit(0)
	}
	if isTruncated(data) {
		os.Exit(255)
	}
	os.Exit(1)
}
