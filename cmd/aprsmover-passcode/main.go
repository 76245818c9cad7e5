/* APRS-IS passcode calculator */
package main

import (
	"fmt"
	"os"

	aprsmover "github.com/doismellburning/aprsmover/src"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	for _, callsign := range os.Args[1:] {
		fmt.Printf("%s\t%d\n", callsign, aprsmover.Passcode(callsign))
	}
}

func usage() {
	fmt.Printf("APRS-IS passcode calculator\n")
	fmt.Printf("\n")
	fmt.Printf("Usage:\n")
	fmt.Printf("\taprsmover-passcode callsign [callsign ...]\n")
	fmt.Printf("\n")
	fmt.Printf("Example:\n")
	fmt.Printf("\taprsmover-passcode N0CALL\n")
}
