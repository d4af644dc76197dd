package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/flip-seven/internal/logger"
	"github.com/palemoky/flip-seven/internal/protocol/codec"
	"github.com/palemoky/flip-seven/internal/sound"
	"github.com/palemoky/flip-seven/internal/transport"
	"github.com/palemoky/flip-seven/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "server host:port")
	room := flag.String("room", "", "room code; empty uses the server's default room")
	name := flag.String("name", "", "join with this name right away")
	format := flag.String("format", "json", "wire format: json or proto")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	if err := logger.InitFile(); err != nil {
		fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
	}
	defer logger.Close()

	wire := codec.ParseFormat(*format)
	client := transport.NewClient(transport.BuildURL(*serverAddr, *room, wire), wire)

	var sounds sound.Player
	if !*mute {
		sm := sound.NewSoundManager()
		if err := sm.Init(); err != nil {
			logger.LogInfo("sound disabled: %v", err)
		}
		defer sm.Close()
		sounds = sm
	}

	p := tea.NewProgram(ui.New(client, sounds, *name), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Printf("client error: %v", err)
	}
	client.Close()
}
