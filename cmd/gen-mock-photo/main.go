package main

import (
	"os"

	"github.com/spf13/pflag"

	"wedding-invitation/internal/logging"
	"wedding-invitation/internal/mockphoto"
)

func main() {
	log := logging.New("info", "console", os.Stdout)

	fs := pflag.NewFlagSet("gen-mock-photo", pflag.ExitOnError)
	dir := fs.StringP("out", "o", "photo", "directory to write the cover images into")
	fs.Parse(os.Args[1:])

	paths, err := mockphoto.Generate(*dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate mock cover photo")
	}
	for _, p := range paths {
		log.Info().Str("path", p).Msg("Mock cover photo created")
	}
}
