package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
)

func main() {
	_ = godotenv.Load()

	a := &app{out: os.Stdout}
	defer a.close()
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if a.verbose {
			_ = writeJSON(os.Stderr, pkgerrors.Dump(err))
		}
		a.close()
		os.Exit(1)
	}
}
