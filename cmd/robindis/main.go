// Command robindis prints the disassembly of a bytecode image to stdout.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Urethramancer/robinvm/assembler"
	"github.com/Urethramancer/robinvm/disassembler"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) != 2 {
		log.Println("Usage: robindis <file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("couldn't read %s: %v", os.Args[1], err)
	}
	if len(data)%2 != 0 {
		log.Fatalf("%s has an odd byte count, not a valid word stream", os.Args[1])
	}

	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}

	for _, line := range disassembler.Disassemble(words, assembler.DefaultBase) {
		fmt.Println(line)
	}
}
