package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gonintendo/gonintendo/console"
	"github.com/gonintendo/gonintendo/mappers"
	"github.com/gonintendo/gonintendo/nesrom"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")
	bios    = flag.Bool("bios", false, "Drop into the line-oriented BIOS debug console instead of running.")
	scale   = flag.Float64("scale", 2.0, "Window scale factor.")
	sram    = flag.String("sram", "", "Path to load/persist battery-backed PRG-RAM, if the mapper supports it.")
)

func main() {
	flag.Parse()

	rom, err := nesrom.NewFromPath(*romFile)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}

	m, err := mappers.Get(rom)
	if err != nil {
		log.Fatalf("Couldn't Get() mapper: %v", err)
	}

	gintendo := console.New(m)
	ebiten.SetWindowSize(int(256**scale), int(240**scale))

	loadSRAM(gintendo)

	ctx, cancel := context.WithCancel(context.Background())

	if *bios {
		gintendo.BIOS(ctx)
		saveSRAM(gintendo)
		cancel()
		os.Exit(0)
	}

	if *sram != "" {
		go persistSRAMPeriodically(ctx, gintendo)
	}

	if err := ebiten.RunGame(gintendo); err != nil {
		log.Fatal(err)
	}

	cancel()
	saveSRAM(gintendo)
	os.Exit(0)
}

func loadSRAM(c *console.Bus) {
	if *sram == "" {
		return
	}
	data, err := os.ReadFile(*sram)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("couldn't load SRAM from %q: %v", *sram, err)
		}
		return
	}
	c.LoadRAM(data)
}

func saveSRAM(c *console.Bus) {
	if *sram == "" {
		return
	}
	data, ok := c.SaveRAM()
	if !ok {
		return
	}
	if err := os.WriteFile(*sram, data, 0644); err != nil {
		log.Printf("couldn't persist SRAM to %q: %v", *sram, err)
	}
}

func persistSRAMPeriodically(ctx context.Context, c *console.Bus) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			saveSRAM(c)
		}
	}
}
