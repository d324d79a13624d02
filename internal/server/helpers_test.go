package server

import "errors"

func isBadFrame(err error) bool {
	return errors.Is(err, ErrBadFrame)
}
