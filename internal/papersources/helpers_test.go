package papersources

import "github.com/rs/zerolog"

func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}
