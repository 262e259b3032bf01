package car

import "errors"

var (
	ErrCarNotFound   = errors.New("car not found")
	ErrNoImages      = errors.New("no new images to upload")
	ErrInvalidFileID = errors.New("invalid file id")
)
