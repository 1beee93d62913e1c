package interfaces

import "context"

// AppRegistry defines operations against the Bitrise application registry
type AppRegistry interface {
	// GetAvatarURL returns the avatar icon URL of an application. An empty
	// string with nil error means the application has no avatar.
	GetAvatarURL(ctx context.Context, appSlug string) (string, error)
}
