package redis

import "fmt"

// Key prefix for all questionnaire data
const keyPrefix = "boda"

// draftKey returns the Redis key for a user's draft
func draftKey(username string) string {
	return fmt.Sprintf("%s:draft:%s", keyPrefix, username)
}

// credentialKey returns the Redis key for a credential record
func credentialKey(username string) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, username)
}

// usersIndexKey returns the Redis key for the LIST of usernames in creation order
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}
