// Command disviz lays out the blocks of an analyzer dump for viewing.
package main

import (
	"log/slog"
	"net/http"
	"os"

	_ "net/http/pprof"

	"disviz/internal/disviz/cmd"
	"disviz/internal/disviz/log"
)

const defaultProfileAddr = "localhost:6060"

// profileAddr returns where to serve pprof: DISVIZ_PROFILE holds an address,
// or any other non-empty value for the default one.
func profileAddr() string {
	v := os.Getenv("DISVIZ_PROFILE")
	switch v {
	case "":
		return ""
	case "1", "true":
		return defaultProfileAddr
	}
	return v
}

func main() {
	defer log.RecoverPanic("disviz", func() {
		slog.Error("disviz terminated by a panic")
		os.Exit(2)
	})

	if addr := profileAddr(); addr != "" {
		go func() {
			slog.Debug("pprof listening", "addr", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("pprof stopped", "addr", addr, "error", err)
			}
		}()
	}

	cmd.Execute()
}
