package cmd

import "errors"

var errNotSignedIn = errors.New("no saved identity; run `openup onboard` or `openup` first")
