package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"cipherchat/client"
	"cipherchat/crypto"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"SERVER_URL,default=ws://localhost:8765"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
	// GroupKey overrides the default shared group secret (base64,
	// 32 bytes). Every participant must hold the same value.
	GroupKey string `env:"GROUP_KEY"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	fmt.Println("Generating RSA keys...")
	privateKey, err := crypto.GenerateKeyPair()
	if err != nil {
		return exitRuntime, err
	}

	groupCipher, err := crypto.NewGroupCipher(lo.Ternary(config.GroupKey != "", config.GroupKey, crypto.DefaultGroupKey))
	if err != nil {
		return exitConfig, err
	}

	c, err := client.New(privateKey, groupCipher, os.Stdout, log)
	if err != nil {
		return exitRuntime, err
	}

	if err := c.Dial(config.ServerURL); err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = c.Close()
	}()

	// Username prompt and command input share one reader: the prompt
	// consumes the first line, everything after is commands.
	in := bufio.NewReader(os.Stdin)
	fmt.Print("Enter your username: ")
	username, err := in.ReadString('\n')
	if err != nil {
		return exitRuntime, fmt.Errorf("read username: %w", err)
	}
	username = strings.TrimSpace(username)

	if err := c.Login(username); err != nil {
		return exitRuntime, err
	}

	commands := make(chan client.Command)
	go c.ReadCommands(in, commands)
	go c.Run(commands)

	// The listen loop owns the process lifetime: it ends when the relay
	// drops the connection or /quit closes it locally.
	if err := c.Listen(); err != nil {
		log.Info("Connection closed", "reason", err)
	}
	return exitOK, nil
}
