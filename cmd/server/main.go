package main

import "github.com/palpiteiro/tipengine/internal/logger"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Fatal("tipengine failed", "err", err)
	}
}
