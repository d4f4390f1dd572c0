package config

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

func readPasswordFromTerminal(prompt string) (string, error) {
	initialTermState, err := term.GetState(int(syscall.Stdin))
	if err != nil {
		return "", errors.WithStack(err)
	}

	// Restore the terminal if interrupted while echo is off
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-interrupt:
			_ = term.Restore(int(syscall.Stdin), initialTermState)
			os.Exit(1)
		case <-done:
		}
	}()
	defer signal.Stop(interrupt)

	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(password), nil
}
