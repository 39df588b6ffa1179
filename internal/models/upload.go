package models

import "io"

// Upload is an image sent along with a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
