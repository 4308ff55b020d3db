package main

import (
	"net/http"
	"os"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
)

func main() {
	addr := os.Getenv(constants.EnvServerAddress)
	switch {
	case addr == "":
		addr = "127.0.0.1:8080"
	case addr[0] == ':':
		addr = "127.0.0.1" + addr
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + constants.RouteAPIPrefix + constants.RouteHealth)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}
