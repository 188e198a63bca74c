//go:build !cgo

package store

import "errors"

func openKuzu(Config) (Repository, error) {
	return nil, errors.New("store: the kuzu backend requires a cgo build")
}
