package main

import (
	"fmt"
	"os"

	"lecturenotes/internal/config"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	fmt.Printf("config=%s\n", cfg.Paths.ConfigPath)
	fmt.Printf("server=%s api_base=%s db=%s audio=%s\n", cfg.Server.Addr, cfg.Client.APIBase, cfg.Paths.DBPath, cfg.Paths.AudioDir)
	fmt.Printf("asr.model=%s llm=%s@%s\n", cfg.ASR.ModelPath, cfg.LLM.Model, cfg.LLM.BaseURL)
	for i, h := range cfg.Hooks {
		fmt.Printf("hook %d events=%v cmd=%s args=%v\n", i, h.Events, h.Command, h.Args)
	}
}
