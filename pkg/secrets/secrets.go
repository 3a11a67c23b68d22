package secrets

import (
	"errors"
	"fmt"
)

// Service is the keyring service all sortjson secrets live under.
const Service = "sortjson"

var ErrNotFound = errors.New("secret not found")

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

func RemoteUsernameKey(remote string) string {
	return fmt.Sprintf("remote:%s:username", remote)
}

func RemotePasswordKey(remote string) string {
	return fmt.Sprintf("remote:%s:password", remote)
}

func SigningSeedKey(keyID string) string {
	return fmt.Sprintf("signing:%s:ed25519-seed-b64", keyID)
}
