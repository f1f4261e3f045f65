// Command robinvm loads a bytecode image and runs it to completion through
// the I/O shim.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/robinvm/assembler"
	"github.com/Urethramancer/robinvm/cpu"
	"github.com/Urethramancer/robinvm/ioshim"
)

var debug = flag.Bool("debug", false, "Log each instruction tick at debug level.")

func main() {
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Println("Usage: robinvm [--debug] <file>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("couldn't read %s: %v", flag.Arg(0), err)
	}
	if len(data)%2 != 0 {
		log.Fatalf("%s has an odd byte count, not a valid word stream", flag.Arg(0))
	}

	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}

	c := cpu.New()
	if *debug {
		c.Log.SetLevel(logrus.DebugLevel)
	}
	c.LoadAt(assembler.DefaultBase, words)
	c.WriteWord(cpu.IP, assembler.DefaultBase)

	shim := ioshim.New(c, os.Stdin, os.Stdout)
	if *debug {
		shim.DebugRun(os.Stderr)
	} else {
		shim.Run()
	}
}
