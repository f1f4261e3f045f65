// Command robinasm compiles assembler source into a raw bytecode image.
package main

import (
	"log"
	"os"

	"github.com/Urethramancer/robinvm/assembler"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) != 4 {
		log.Println("Usage: robinasm compile-asm <src> <dst>")
		os.Exit(1)
	}
	if os.Args[1] != "compile-asm" {
		log.Fatalf("unknown command %q, want compile-asm", os.Args[1])
	}

	src, err := os.ReadFile(os.Args[2])
	if err != nil {
		log.Fatalf("couldn't read %s: %v", os.Args[2], err)
	}

	asm := assembler.New()
	words, err := asm.Assemble(string(src), assembler.DefaultBase)
	if err != nil {
		log.Fatalf("assembly failed: %v", err)
	}

	if err := writeWords(os.Args[3], words); err != nil {
		log.Fatalf("couldn't write %s: %v", os.Args[3], err)
	}
	log.Printf("wrote %d words to %s", len(words), os.Args[3])
}

// writeWords packs words big-endian, matching the bytecode file format
// cmd/robinvm reads back.
func writeWords(path string, words []uint16) error {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[2*i] = byte(w >> 8)
		out[2*i+1] = byte(w)
	}
	return os.WriteFile(path, out, 0644)
}
