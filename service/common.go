package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"yatube/app/config"
	"yatube/app/repositories"

	"go.uber.org/zap"
)

// env is what every command runs with once flags and config are read.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	in     *bufio.Reader
}

// dbExists reports whether the configured database directory is present.
func (e *env) dbExists() bool {
	_, err := os.Stat(e.cfg.Storage.Path)
	return err == nil
}

func (e *env) openStore() (*repositories.Store, error) {
	store, err := repositories.Open(e.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// confirm asks a yes/no question. Anything but y or Y is a no.
func (e *env) confirm(question string) bool {
	fmt.Fprintf(e.out, "%s [y/N] ", question)
	return strings.EqualFold(e.readLine(), "y")
}

func (e *env) readLine() string {
	line, _ := e.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}
