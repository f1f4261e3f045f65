// Command robinc compiles a Robin source file straight to a bytecode
// image, via the assembler text the robin package's Compile emits.
package main

import (
	"log"
	"os"

	"github.com/Urethramancer/robinvm/assembler"
	"github.com/Urethramancer/robinvm/robin"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) != 4 {
		log.Println("Usage: robinc compile <src.rn> <dst>")
		os.Exit(1)
	}
	if os.Args[1] != "compile" {
		log.Fatalf("unknown command %q, want compile", os.Args[1])
	}

	src, err := os.ReadFile(os.Args[2])
	if err != nil {
		log.Fatalf("couldn't read %s: %v", os.Args[2], err)
	}

	asmText, err := robin.Compile(string(src))
	if err != nil {
		log.Fatalf("compile failed: %v", err)
	}

	asm := assembler.New()
	words, err := asm.Assemble(asmText, assembler.DefaultBase)
	if err != nil {
		log.Fatalf("assembly of compiled output failed: %v", err)
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
