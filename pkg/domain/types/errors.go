package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagConfiguration marks errors caused by missing or malformed input
	ErrTagConfiguration = goerr.NewTag("configuration")

	// ErrTagRemoteCall marks errors caused by an outbound HTTP call
	ErrTagRemoteCall = goerr.NewTag("remote_call")
)
