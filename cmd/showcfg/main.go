package main

import (
	"fmt"

	"parley/internal/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	fmt.Printf("engine=%s encoder.backend=%s speakers=%d max_segment_sec=%.1f\n",
		cfg.Engine.Name, cfg.Encoder.Backend, cfg.Diarize.Speakers, cfg.Diarize.MaxSegmentSec)
	fmt.Printf("encoder.url=%q encoder.command=%q\n", cfg.Encoder.URL, cfg.Encoder.Command)
	fmt.Printf("server.addr=%s state_dir=%s\n", cfg.Server.Addr, cfg.Paths.StateDir)
}
