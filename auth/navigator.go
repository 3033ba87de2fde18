package auth

import (
	"github.com/rs/zerolog/log"
)

// Navigator moves the user to another page. The browser client changed
// window.location; a CLI prints a hint and the portal turns it into a redirect.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// LogNavigator only records the navigation in the log
type LogNavigator struct{}

func (LogNavigator) Navigate(path string) {
	log.Debug().Str("path", path).Msg("navigate")
}
